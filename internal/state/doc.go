// Package state reads and writes model weight-state files.
//
// Files are written in the SafeTensors layout:
//
//	[8 bytes: header size, uint64 little-endian]
//	[header: JSON object name -> {dtype, shape, data_offsets}]
//	[tensor data: raw little-endian bytes]
//
// On read, PyTorch checkpoints (.pt, .pth, .bin) are also accepted so that
// state dicts saved by the Python tooling can be restored into shadow models.
package state
