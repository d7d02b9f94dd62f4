// Package pru drives the real-time co-processors (PRUs) through their shared
// memory window.
package pru

// The host and each PRU lane synchronize with a one byte flag per lane:
//
//	lane: sets its flag to 1 and polls until it reads 0.
//	host: polls until all active lanes read 1, then hands the frame over
//	      and clears the flags.
//	lane: drains the frame over its output bus, waits for the latch delay,
//	      sets its flag back to 1.
//
// A strip count of 0xFF in the configuration bytes tells lanes to halt.
//
// Producer: host (Driver)
// Consumer: PRU firmware
