// Command keygen generates the RSA private key used to sign the API tokens.
// The key is written in PKCS1 PEM form, which is the format the configuration
// loader expects in private_key_file.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	dir  = flag.String("dir", "", "Directory where the key will be stored")
	bits = flag.Int("bits", 2048, "Key size in bits")
)

func main() {
	flag.Parse()
	if *dir == "" {
		log.Fatal("no directory was given")
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		log.Fatalln(err)
	}

	pemKey := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}

	pemFile, err := os.Create(filepath.Join(*dir, "private.pem"))
	if err != nil {
		log.Fatalln(err)
	}
	if err = pem.Encode(pemFile, pemKey); err != nil {
		log.Fatalln(err)
	}
	if err = pemFile.Close(); err != nil {
		log.Fatalln(err)
	}

	log.Printf("private key written to %s", pemFile.Name())
}
