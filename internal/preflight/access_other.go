//go:build !unix

package preflight

import "os"

// accessible: 无 access(2) 的平台以创建临时文件探测可写性。
func accessible(dir string) error {
	f, err := os.CreateTemp(dir, ".simblaster-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
