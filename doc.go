// Package md5vault computes RFC 1321 MD5 digests and keeps a small
// username/password store keyed by them.
//
// The digest itself lives in internal/md5 and is exposed here through
// [Sum] and the [Digest] type. The store persists one digest per account
// in a buntdb database and never keeps the password.
//
// MD5 is broken for security purposes and the store applies no salt or
// stretching. Use it to study the algorithm, not to protect real accounts.
//
// Basic usage:
//
//	store, err := md5vault.Open(md5vault.WithPath("vault.db"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.CreateAccount("guest", "a"); err != nil {
//	    log.Fatal(err)
//	}
//
//	ok, err := store.Validate("guest", "a")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("match:", ok)
//
// Stores can be moved between hosts with [Store.Export] and
// [Store.Import], or sealed to a recipient with [Store.ExportSealed] and
// [Store.ImportSealed].
package md5vault
