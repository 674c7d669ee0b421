// Package cli implements lirra-admin, the operator command-line tool for the
// Lirra admin API.
//
// The cobra root command exposes one-shot commands (stats, keys generate,
// keys revoke, keys extend) and an interactive REPL started with "repl".
// One-shot commands authenticate with LIRRA_ADMIN_TOKEN when it is set and
// otherwise with --email plus a hidden password prompt.
//
// Output is coloured with fatih/color unless --no-color or the no_color
// config key is set; tables are aligned with text/tabwriter.
package cli
