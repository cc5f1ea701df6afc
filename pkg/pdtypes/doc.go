// Package pdtypes defines the map configuration, operation settings, and
// dict/transaction/iterator interfaces shared between the SQL engine and
// its drivers.
// See docs/ARCHITECTURE § Main Interface.
package pdtypes
