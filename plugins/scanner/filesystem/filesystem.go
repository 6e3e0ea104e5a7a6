// Package filesystem 统计输出目录中已有的模拟文件编号。
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"simblaster/pkg/contract"
)

// Options: 生成器与 Geant 输出目录（绝对路径或相对工作目录）。
type Options struct {
	MCGenDir string
	GeantDir string
	// Ext: 参与统计的扩展名，默认 "root"。
	Ext string
}

// FileSystem 实现基于目录列举的 Scanner；不递归子目录。
type FileSystem struct {
	mcgen string
	geant string
	ext   string
}

// New 创建 Scanner；两个目录均必填。
func New(opts *Options) (*FileSystem, error) {
	if opts == nil || strings.TrimSpace(opts.MCGenDir) == "" || strings.TrimSpace(opts.GeantDir) == "" {
		return nil, fmt.Errorf("scanner: directories not set: %w", contract.ErrInvalidInput)
	}
	ext := strings.TrimPrefix(strings.TrimSpace(opts.Ext), ".")
	if ext == "" {
		ext = "root"
	}
	return &FileSystem{mcgen: opts.MCGenDir, geant: opts.GeantDir, ext: ext}, nil
}

var _ contract.Scanner = (*FileSystem)(nil)

// Scan 返回 tag 在两个目录中的最大编号；无文件时为 0。
func (s *FileSystem) Scan(ctx context.Context, tag string) (contract.Seqs, error) {
	mc, err := s.maxByTag(ctx, s.mcgen, contract.PrefixMCGen)
	if err != nil {
		return contract.Seqs{}, err
	}
	g4, err := s.maxByTag(ctx, s.geant, contract.PrefixGeant)
	if err != nil {
		return contract.Seqs{}, err
	}
	return contract.Seqs{MCGen: mc[tag], Geant: g4[tag]}, nil
}

// Inventory 汇总两个目录中出现过的全部标识。
func (s *FileSystem) Inventory(ctx context.Context) ([]contract.TagCount, error) {
	mc, err := s.maxByTag(ctx, s.mcgen, contract.PrefixMCGen)
	if err != nil {
		return nil, err
	}
	g4, err := s.maxByTag(ctx, s.geant, contract.PrefixGeant)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(mc)+len(g4))
	for tag := range mc {
		tags = append(tags, tag)
	}
	for tag := range g4 {
		if _, dup := mc[tag]; !dup {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	out := make([]contract.TagCount, 0, len(tags))
	for _, tag := range tags {
		out = append(out, contract.TagCount{Tag: tag, Seqs: contract.Seqs{MCGen: mc[tag], Geant: g4[tag]}})
	}
	return out, nil
}

// maxByTag 列举 dir 下 "<prefix>_<tag>_NNNN.<ext>" 文件，按 tag 取最大编号。
func (s *FileSystem) maxByTag(ctx context.Context, dir, prefix string) (map[string]int, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("scanner: %s: %w", dir, contract.ErrPathInvalid)
		}
		return nil, err
	}
	out := make(map[string]int)
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if e.IsDir() {
			continue
		}
		// 允许指向常规文件的符号链接；其他非常规文件跳过
		if e.Type()&os.ModeSymlink != 0 {
			t, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !t.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		p, tag, n, ext, ok := contract.ParseFileName(e.Name())
		if !ok || p != prefix || ext != s.ext {
			continue
		}
		if n > out[tag] {
			out[tag] = n
		}
	}
	return out, nil
}
