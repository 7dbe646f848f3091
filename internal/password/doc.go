// Package password hashes passwords for storage and verifies candidates against
// stored hashes.
//
// Hashes are Argon2id PHC strings:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<salt>$<digest>
//
// where salt and digest are unpadded standard base64. The string carries every
// parameter needed for verification, so it can be stored as a single field.
package password
