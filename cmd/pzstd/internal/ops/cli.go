package ops

var CLI struct {
	Compress struct {
		File   string `optional:"" arg:"" type:"existingfile"`
		Output string `help:"Output filename; use '-' for stdout" short:"o"`
		Level  int    `help:"Compression level (1-22) [3 default]" default:"3" short:"l"`
		Force  bool   `help:"Force overwrite of existing file" short:"f"`
		Quiet  bool   `help:"Do not write progress to stdout" short:"q"`
		Long   bool   `help:"Enable long distance matching"`
		CX     bool   `help:"Enable content checksum"`
		NoCS   bool   `help:"Omit content size from frame header"`
	} `cmd:"" aliases:"c,comp" help:"Compress data into zstd"`
	Decompress struct {
		File      string `optional:"" arg:"" type:"existingfile"`
		Output    string `help:"Output filename; use '-' for stdout" short:"o"`
		Force     bool   `help:"Force overwrite of existing file" short:"f"`
		Quiet     bool   `help:"Do not write progress to stdout" short:"q"`
		Sparse    bool   `help:"Enable sparse writes" short:"s"`
		WindowLog int    `help:"Maximum window log accepted [0 default]"`
	} `cmd:"" aliases:"d,decomp" help:"Decompress zstd data"`
	Verify struct {
		File string `optional:"" arg:"" type:"existingfile"`
		Skip bool   `help:"Skip decompress; only parse frame header" short:"s"`
	} `cmd:"" aliases:"v,ver" help:"Verify zstd data"`
	Train struct {
		Samples []string `arg:"" type:"existingfile" help:"Sample files"`
		Output  string   `help:"Dictionary output filename" default:"dictionary.zdict" short:"o"`
		MaxSize int      `help:"Maximum dictionary size" default:"112640"`
		Level   int      `help:"Compression level to tune for" default:"3" short:"l"`
		DictID  uint32   `help:"Force dictionary id [0 random]"`
	} `cmd:"" aliases:"t" help:"Train a dictionary from sample files"`
	Bakeoff struct {
		File string `optional:"" arg:"" type:"existingfile"`
		RAM  bool   `help:"Process data in RAM"`
	} `cmd:"" aliases:"b,bake" help:"Compare performance to github.com/klauspost/compress/zstd"`

	Cpus int    `help:"Compression worker threads [0 synchronous] [-1 auto]" default:"0" short:"c"`
	Dict string `help:"Optional dictionary file" type:"existingfile"`
}
