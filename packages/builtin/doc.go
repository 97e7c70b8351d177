// Package builtin provides the functions available inside {{ }}
// interpolation in scenario files.
//
// Available functions:
//   - uuid(): random UUID v4
//   - now(), date(layout), timestamp(), timestampMs()
//   - random(min, max), randomString(n), randomAlphanumeric(n), randomEmail()
//   - base64(s), base64Decode(s), md5(s), sha256(s), urlEncode(s), urlDecode(s)
//   - upper(s), lower(s), env(name)
package builtin
