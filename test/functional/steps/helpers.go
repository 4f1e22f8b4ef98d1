package steps

import (
	"os"
)

func makeTempDir() (string, error) {
	return os.MkdirTemp("", "cfguard-functional-*")
}

func removeTempDir(dir string) {
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
}
