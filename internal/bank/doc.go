// Package bank holds the static content catalogs: coffee facts and shop
// recommendations. Catalogs are data, not code; the embedded TOML files can
// be extended (append only) without touching selection logic, and optional
// user files add items after the embedded bank.
package bank
