// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for tradedesk
// clients.
//
// Configuration comes from at most one file, named by the
// TRADEDESK_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no file search. Without a file the
// client runs on [Default], which is enough to reach a daemon on its
// standard socket.
//
// The file may contain paper and live sections that override base
// values when [Config].Environment matches, so one file can describe
// both a paper-trading and a live daemon.
//
// Variable expansion is performed on socket_path after loading:
// ${HOME}, ${XDG_RUNTIME_DIR} and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// This package depends on no other tradedesk packages.
package config
