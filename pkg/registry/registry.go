package registry

import (
	"io"

	"simblaster/pkg/contract"
	gcocktail "simblaster/plugins/generator/cocktail"
	ggun "simblaster/plugins/generator/gun"
	gpluto "simblaster/plugins/generator/pluto"
	sfs "simblaster/plugins/scanner/filesystem"
	sdry "simblaster/plugins/submitter/dryrun"
	sqsub "simblaster/plugins/submitter/qsub"
	wfs "simblaster/plugins/writer/filesystem"
)

// SubmitterOptions: 提交器工厂入参；Out 仅 dryrun 使用。
type SubmitterOptions struct {
	Submit contract.SubmitOptions
	Out    io.Writer
}

// NewGenerator 工厂签名：接收已解析的生成器参数。
type NewGenerator func(opts contract.GeneratorOptions) (contract.Generator, error)

// NewSubmitter 工厂签名。
type NewSubmitter func(opts SubmitterOptions) (contract.Submitter, error)

// NewScanner 工厂签名。
type NewScanner func(opts sfs.Options) (contract.Scanner, error)

// NewWriter 工厂签名。
type NewWriter func(opts wfs.Options) (contract.Writer, error)

// Generator 工厂注册表（按通道类别，显式、零反射）。
var Generator = map[contract.Kind]NewGenerator{
	// pluto: Pluto 反应式，标识取自衰变树
	contract.KindPluto: func(o contract.GeneratorOptions) (contract.Generator, error) { return gpluto.New(o) },
	// cocktail: 固定标识 "cocktail"
	contract.KindCocktail: func(o contract.GeneratorOptions) (contract.Generator, error) { return gcocktail.New(o) },
	// gun: 粒子枪，标识为 gun_ + 规范化粒子列表
	contract.KindGun: func(o contract.GeneratorOptions) (contract.Generator, error) { return ggun.New(o) },
}

// Submitter 工厂注册表。
var Submitter = map[string]NewSubmitter{
	"qsub": func(o SubmitterOptions) (contract.Submitter, error) { return sqsub.New(o.Submit) },
	// dryrun: 仅记录与打印，不调用批处理系统
	"dryrun": func(o SubmitterOptions) (contract.Submitter, error) {
		return sdry.New(sdry.Options{Submit: o.Submit, Out: o.Out}), nil
	},
}

// Scanner 工厂注册表。
var Scanner = map[string]NewScanner{
	"fs": func(o sfs.Options) (contract.Scanner, error) { return sfs.New(&o) },
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// fs: 文件系统 Writer（原子替换）
	"fs": func(o wfs.Options) (contract.Writer, error) { return wfs.New(&o) },
}
