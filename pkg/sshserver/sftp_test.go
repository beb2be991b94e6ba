package sshserver

import (
	"bytes"
	"math"
	"os"
	"testing"
)

func TestShannonEntropyEmpty(t *testing.T) {
	if got := shannonEntropy(nil); got != 0 {
		t.Errorf("shannonEntropy(nil) = %v, want 0", got)
	}
}

func TestShannonEntropyUniformLowEntropy(t *testing.T) {
	data := bytes.Repeat([]byte{'a'}, 1000)
	if got := shannonEntropy(data); got != 0 {
		t.Errorf("shannonEntropy(all same byte) = %v, want 0", got)
	}
}

func TestShannonEntropyUniformHighEntropy(t *testing.T) {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	got := shannonEntropy(data)
	if math.Abs(got-8.0) > 0.001 {
		t.Errorf("shannonEntropy(256 distinct bytes) = %v, want ~8.0", got)
	}
}

func TestClaimedMIME(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/payload.exe", "application/x-executable"},
		{"/tmp/PAYLOAD.EXE", "application/x-executable"},
		{"backdoor.sh", "application/x-shellscript"},
		{"miner.py", "text/x-python"},
		{"notes.txt", "text/plain"},
		{"unknown.bin", ""},
		{"noextension", ""},
	}
	for _, tt := range tests {
		if got := claimedMIME(tt.path); got != tt.want {
			t.Errorf("claimedMIME(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestZeroReaderAt(t *testing.T) {
	r := &zeroReaderAt{size: 10}

	buf := make([]byte, 5)
	n, err := r.ReadAt(buf, 0)
	if n != 5 || err != nil {
		t.Fatalf("ReadAt(0) = (%d, %v), want (5, nil)", n, err)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("ReadAt returned non-zero byte: %v", buf)
		}
	}

	n, err = r.ReadAt(buf, 8)
	if n != 2 {
		t.Fatalf("ReadAt(8) n = %d, want 2", n)
	}

	n, err = r.ReadAt(buf, 10)
	if n != 0 {
		t.Fatalf("ReadAt(10) n = %d, want 0", n)
	}
	_ = err
}

func TestFileInfoListListAt(t *testing.T) {
	l := &fileInfoList{entries: []os.FileInfo{
		&syntheticFileInfo{name: "a"},
		&syntheticFileInfo{name: "b"},
	}}

	dst := make([]os.FileInfo, 1)
	n, err := l.ListAt(dst, 0)
	if n != 1 || err != nil {
		t.Fatalf("ListAt(dst, 0) = (%d, %v), want (1, nil)", n, err)
	}
	if dst[0].Name() != "a" {
		t.Fatalf("ListAt(dst, 0) returned %q, want a", dst[0].Name())
	}

	n, err = l.ListAt(dst, 2)
	if n != 0 || err == nil {
		t.Fatalf("ListAt past end = (%d, %v), want (0, io.EOF)", n, err)
	}

	dst2 := make([]os.FileInfo, 2)
	n, err = l.ListAt(dst2, 0)
	if n != 2 || err != nil {
		t.Fatalf("ListAt(dst2, 0) = (%d, %v), want (2, nil)", n, err)
	}
}
