// Package capture extracts values from named JSON documents.
//
// Paths are "<document>.<gjson path>", for example "cart.items.0.sku".
// Bracket indexes are accepted and converted (cart.items[0].sku).
// Extracted values can be stored as scenario variables and used by later
// steps via {{name}} or {var: name}.
package capture
