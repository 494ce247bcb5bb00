// Package srf reads and writes point-source slip files and derives their
// velocity samples from slip-time functions.
//
// # File Layout
//
// A file starts with a version line, "1.0" or "2.0", followed by an optional
// PLANE header block and a POINTS block:
//
//	2.0
//	POINTS 1
//	lon lat depth strike dip area tinit dt vs den
//	rake slip1 nt1 slip2 nt2 slip3 nt3
//	  sr1[1] sr1[2] sr1[3] sr1[4] sr1[5] sr1[6]
//	  ...
//
// vs and den are present only in version 2.0. Velocity samples are written
// six per line and every component starts on a new line. Lines starting
// with '#' are comments.
//
// # Units
//
// Point values are SI in memory and converted at the file boundary:
//
//	field      memory   file
//	slip       m        cm
//	velocity   m/s      cm/s
//	area       m²       cm²
//	vs         m/s      cm/s
//	density    kg/m³    g/cm³
//	depth      km       km
//
// # Compression
//
// WriteFile and ReadFile compress by file extension: ".zst", ".s2" and
// ".lz4" select the matching codec and anything else is plain text.
package srf
