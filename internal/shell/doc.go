// SPDX-License-Identifier: MPL-2.0

// Package shell runs command scripts with the embedded mvdan.cc/sh
// interpreter, so scripts behave the same on every platform without
// depending on a system shell.
package shell
