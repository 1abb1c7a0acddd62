// Package core holds the payroll domain: settings, pay-week entries and their
// validation, rupiah amounts and Indonesian dates, and the ledger projector
// that turns ordered entries into rows with a running loan balance.
//
// The package does no I/O. Storage, HTTP and export all work on the values
// defined here, and every figure shown to a user comes from Project.
package core
