package db

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// GCPasswordHash computes the salted GC password hash: md5(password + "_" +
// regtime + "_salt"), lowercase hex (spec.md §4.3, grounded on
// original_source/trunk/login_server/src/dclogin.c's password check).
func GCPasswordHash(password string, regTime int64) string {
	salted := fmt.Sprintf("%s_%d_salt", password, regTime)
	sum := md5.Sum([]byte(salted))
	return hex.EncodeToString(sum[:])
}
