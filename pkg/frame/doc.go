// Package frame converts RGB pixel buffers into the bit layout drained by
// the PRU firmware.
package frame

// A frame goes through four steps, each over the whole buffer:
//
//	reorder   RGB triples become GRB, the order of the LED driver chips.
//	unfold    optional zigzag correction for strips folded back on themselves.
//	correct   gamma + brightness lookup, optionally temporally dithered.
//	transpose bit-plane transpose, one word per output clock of the shift
//	          registers, one bit per strip.
//
// Producer: OPC server callbacks
// Consumer: pru.Driver
