package catlink

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var vendorPublicKey *rsa.PublicKey

func init() {
	der, err := base64.StdEncoding.DecodeString(RSAPublicKey)
	if err != nil {
		panic(errors.Wrap(err, "decode vendor public key"))
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		panic(errors.Wrap(err, "parse vendor public key"))
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		panic("vendor public key is not RSA")
	}
	vendorPublicKey = rsaPub
}

// EncryptPassword obfuscates a plaintext password the way the vendor
// app does: MD5 lowercase hex, then SHA-1 uppercase hex of that string,
// RSA PKCS#1 v1.5 encrypted with the fixed vendor key, base64 encoded.
// This is a transmission requirement, not a security boundary.
func EncryptPassword(plain string) (string, error) {
	md5Hex := fmt.Sprintf("%x", md5.Sum([]byte(plain)))
	sha1Hex := strings.ToUpper(fmt.Sprintf("%x", sha1.Sum([]byte(md5Hex))))
	cipher, err := rsa.EncryptPKCS1v15(rand.Reader, vendorPublicKey, []byte(sha1Hex))
	if err != nil {
		return "", errors.Wrap(err, "rsa encrypt password")
	}
	return base64.StdEncoding.EncodeToString(cipher), nil
}
