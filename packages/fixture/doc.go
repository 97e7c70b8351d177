// Package fixture provides the static models scenarios assert against: a
// page with elements and a set of JSON documents.
//
// Elements implement the backend capability interfaces (state, text, HTML,
// attributes). Lookups are lazy: a Locator is resolved only when a check
// awaits it, and a selector with no element resolves to nil, which the
// backend treats as an element that does not exist.
package fixture
