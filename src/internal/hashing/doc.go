// Package hashing provides MD5 checksum calculation utilities.
//
// The loader uses it twice: ChecksumReaderProxy fingerprints the raw declaration
// file while it is read, and SumBytes fingerprints the canonical form of the
// resolved Declaration. The second checksum is stable across a load/render/reload
// cycle and is printed with every apply report, so two runs can be compared at a
// glance.
//
// # Example Usage
//
//	f, _ := os.Open(path)
//	defer f.Close()
//
//	proxy := hashing.NewMD5ReaderProxy(f)
//	content, _ := io.ReadAll(proxy)
//
//	checksum, _ := proxy.GetChecksum()
//	fmt.Printf("Read %d bytes, MD5: %s\n", len(content), checksum)
package hashing
