package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
)

type errorReader struct {
	err error
}

func (e *errorReader) Read(p []byte) (n int, err error) {
	return 0, e.err
}

func TestNewMD5ReaderProxy(t *testing.T) {
	reader := strings.NewReader("test data")
	proxy := NewMD5ReaderProxy(reader)

	if proxy == nil {
		t.Fatal("Expected proxy to be non-nil")
	}
	if proxy.reader != reader {
		t.Error("Expected reader to be set correctly")
	}
	if proxy.checksum == nil {
		t.Error("Expected checksum to be initialized")
	}
}

func TestChecksumReaderProxy_ReadAll(t *testing.T) {
	testData := "system:\n  gateways: []\n"
	proxy := NewMD5ReaderProxy(strings.NewReader(testData))

	content, err := io.ReadAll(proxy)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(content) != testData {
		t.Errorf("Expected %q, got %q", testData, string(content))
	}

	expected := md5.Sum([]byte(testData))
	checksum, err := proxy.GetChecksum()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if checksum != hex.EncodeToString(expected[:]) {
		t.Errorf("Expected checksum %s, got %s", hex.EncodeToString(expected[:]), checksum)
	}
}

func TestChecksumReaderProxy_ReadError(t *testing.T) {
	readErr := errors.New("read failed")
	proxy := NewMD5ReaderProxy(&errorReader{err: readErr})

	buf := make([]byte, 8)
	if _, err := proxy.Read(buf); err != readErr {
		t.Errorf("Expected read error to be propagated, got %v", err)
	}
}

func TestSumBytes(t *testing.T) {
	data := []byte(`{"org":{"name":"acme"}}`)
	expected := md5.Sum(data)

	if got := SumBytes(data); got != hex.EncodeToString(expected[:]) {
		t.Errorf("SumBytes() = %s, want %s", got, hex.EncodeToString(expected[:]))
	}
	if SumBytes(data) != SumBytes(append([]byte(nil), data...)) {
		t.Error("Expected SumBytes to be deterministic")
	}
}
