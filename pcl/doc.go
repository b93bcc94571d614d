// Package pcl encodes laser jobs into the PJL/PCL/HPGL byte stream understood
// by Epilog style laser engravers.
//
// A job stream has the following shape:
//
//	ESC%-12345X@PJL JOB NAME=<title>      job header (PJL)
//	ESCE@PJL ENTER LANGUAGE=PCL
//	ESC&y<af>A ESC&l0U ESC&l0Z            autofocus, page offsets
//	ESC&u<dpi>D ESC*p0X ESC*p0Y ESC*t<dpi>R
//	ESCE@PJL ENTER LANGUAGE=PCL           vector section
//	ESC*r0F ESC*r<h>T ESC*r<w>S ESC*r1A ESC*rC
//	ESC%1B IN;                            enter HPGL
//	XR####;YP###;ZS###;                   frequency, power, speed
//	PU<x>,<y>; PD<x>,<y>[,<x>,<y>...];    motion
//	ESC%0B                                leave HPGL
//	ESCE ESC%-12345X @PJL EOJ             footer
//
// The device is sensitive to the order of these commands, not only to their
// content: the page geometry must be declared before entering HPGL.
//
// The command functions return a freshly allocated slice on every call. The
// Encoder writes each command through a Device, normally an *lpr.Session.
package pcl
