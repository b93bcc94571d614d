// Package laser runs complete vector jobs on laser engravers.
//
// It wires the lpr transport to the pcl encoder in the order the device
// requires: connect and negotiate, header, vector setup, laser parameters,
// motion, end of vector data, footer. The session is always padded and closed,
// also when a step in between fails.
package laser
