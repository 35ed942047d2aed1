package magick

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

type fakeExecutor struct {
	args []string
	err  error
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	f.args = args
	return f.err
}

func TestConvertCMYKArgs(t *testing.T) {
	fake := &fakeExecutor{}
	client, err := New("magick", 30, WithExecutor(fake))
	if err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "out", "001-Aragorn-1.jpg")
	if err := client.ConvertCMYK(context.Background(), "/pool/001.png", dest); err != nil {
		t.Fatalf("convert: %v", err)
	}

	joined := strings.Join(fake.args, " ")
	if !strings.Contains(joined, "-colorspace CMYK") {
		t.Errorf("colorspace flag missing: %v", fake.args)
	}
	if fake.args[0] != "/pool/001.png" || fake.args[len(fake.args)-1] != dest {
		t.Errorf("source/dest ordering wrong: %v", fake.args)
	}
}

func TestConvertCMYKToolFailure(t *testing.T) {
	fake := &fakeExecutor{err: errors.New("exit status 1")}
	client, err := New("magick", 0, WithExecutor(fake))
	if err != nil {
		t.Fatal(err)
	}
	err = client.ConvertCMYK(context.Background(), "/pool/001.png", filepath.Join(t.TempDir(), "x.jpg"))
	if err == nil || !strings.Contains(err.Error(), "001.png") {
		t.Errorf("failure not surfaced with file name: %v", err)
	}
}

func TestConvertCMYKValidatesPaths(t *testing.T) {
	client, err := New("magick", 0, WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.ConvertCMYK(context.Background(), "", "dest"); err == nil {
		t.Error("empty source accepted")
	}
}
