package security_helpers

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Public object ids are "<id>/<type>/<salt>" AES-CBC encrypted then
// url-safe base64 encoded, so raw db ids never appear in the API.

func Encode(id uint64, objectType string, objectSalt string) string {
	plain := fmt.Sprintf("%d/%s/%s", id, objectType, objectSalt)

	encrypted, err := aesEncrypt(plain)

	if err != nil {
		slog.Error("Encode error for object id 💀",
			slog.String("error", err.Error()))

		return ""
	}

	return base64.RawURLEncoding.EncodeToString([]byte(encrypted))
}

// Decode returns (0, "") on any failure; callers treat that as "not
// found" rather than an error.
func Decode(encoded string) (uint64, string) {
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)

	if err != nil {
		slog.Error("Decode error for object id 💀",
			slog.String("error", err.Error()))

		return 0, ""
	}

	decrypted, err := aesDecrypt(string(decoded))

	if err != nil {
		slog.Error("Decode error for object id 💀",
			slog.String("error", err.Error()))

		return 0, ""
	}

	parts := strings.Split(string(decrypted), "/")

	if len(parts) != 3 {
		slog.Error("Decode error for object id 💀 part count")

		return 0, ""
	}

	id, err := strconv.ParseUint(parts[0], 10, 64)

	if err != nil {
		slog.Error("Decode error for object id 💀",
			slog.String("error", err.Error()))

		return 0, ""
	}

	return id, parts[1]
}

func aesEncrypt(plaintext string) (string, error) {
	key := os.Getenv("AES_KEY")
	iv := os.Getenv("AES_IV")

	padded := pkcs5Pad([]byte(plaintext), aes.BlockSize)

	block, err := aes.NewCipher([]byte(key))

	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(padded))
	mode := cipher.NewCBCEncrypter(block, []byte(iv))
	mode.CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func aesDecrypt(encrypted string) ([]byte, error) {
	key := os.Getenv("AES_KEY")
	iv := os.Getenv("AES_IV")

	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)

	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher([]byte(key))

	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext is not block aligned")
	}

	mode := cipher.NewCBCDecrypter(block, []byte(iv))
	mode.CryptBlocks(ciphertext, ciphertext)

	return pkcs5Unpad(ciphertext), nil
}

func pkcs5Pad(src []byte, blockSize int) []byte {
	padding := blockSize - len(src)%blockSize
	return append(src, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs5Unpad(src []byte) []byte {
	length := len(src)

	if length == 0 {
		return src
	}

	padding := int(src[length-1])

	if padding > length || padding > aes.BlockSize {
		return src
	}

	return src[:length-padding]
}
