// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

/*
Package ini provides a typed key-value store backed by a simple INI-style text
format. See https://en.wikipedia.org/wiki/INI_file.

The store is designed for small configuration files that a program reads,
modifies, and writes back. It does not preserve comments, blank lines, or key
order: a saved file always lists sections and keys in sorted order.

Syntax

A file is a sequence of lines. Blank lines are skipped. A line beginning with
a square bracket ('[') starts a section, named by the text up to the last
closing bracket (']') on the line:

	[Display]
	width = 1920
	fullscreen = yes

Every other line is a property belonging to the most recent section. It is
split at the first equals sign ('='). A single space on either side of the
equals sign is part of the separator; everything else is kept verbatim. A
property that appears before any section is an error. Repeating a section
header starts that section over: properties listed under an earlier header of
the same name are discarded, not merged.

Comments, quoting, escapes, and continuation lines are not supported.

Types

Values are always stored as strings. The String, Int, Float, and Bool methods
parse on read and return the caller's default when the key is missing or the
value does not parse. Bool recognizes "true", "on", "yes", "y", and "1" in any
case; any other value of a present key reads as false.
*/
package ini
