// Package bus defines the data-source seam: the word format delivered by
// avionics buses, per-source wire settings, and the Driver interface the
// acquisition manager reads through. A deterministic simulator driver is
// included for bench and test use; hardware integrations implement Driver
// out of tree.
package bus
