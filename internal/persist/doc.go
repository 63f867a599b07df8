// Package persist saves and loads named objects under a base directory.
//
// Each object is one file, <dir>/<name>.wgz, laid out as:
//
//	magic    [4]byte   "WGZ1"
//	checksum [32]byte  SHA3-256 of payload
//	payload  []byte    snappy-compressed JSON
//
// Save replaces files atomically by writing to a temporary file and
// renaming it. Load verifies the checksum before decoding and does not
// try to recover damaged files.
package persist
