package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mnglab/mng"
	"github.com/mnglab/mng/music"
	"github.com/mnglab/mng/script"
	"github.com/mnglab/mng/version"
)

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if a bundle already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write bundles; list the waves, effects, tracks and layers of the inputs instead.")
	tmplFile := flag.String("t", "", "Template used by -l instead of the built-in listing. Sprig functions are available.")
	yamlOut := flag.Bool("y", false, "Do not write bundles; write the listing as .yml instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	waveDir := flag.String("w", "", "Directory of the .wav files named by the scripts. By default, the directory of each script.")
	outPath := flag.String("o", "", "Directory where to write the output. The directory and its parents are created if needed. By default, the working directory.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	tmpl, err := listingTemplate(*tmplFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			_, err := os.Stdout.Write(contents)
			return err
		}
		dir := *outPath
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		_, name := filepath.Split(filename)
		f := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+extension)
		if original, err := os.ReadFile(f); err == nil {
			if bytes.Equal(original, contents) {
				return nil
			}
			if *safe {
				return fmt.Errorf("file %v would be overwritten", f)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		b, err := readInput(filename, *waveDir)
		if err != nil {
			return err
		}
		if !*list && !*yamlOut {
			return output(filename, mng.BundleExtension, b.Encode())
		}
		l, err := describe(b)
		if err != nil {
			return fmt.Errorf("could not load bundle %v: %v", b.Name, err)
		}
		if *list {
			var buf bytes.Buffer
			if err := l.render(&buf, tmpl); err != nil {
				return err
			}
			if *stdout || *outPath == "" {
				fmt.Print(buf.String())
			} else if err := output(filename, ".txt", buf.Bytes()); err != nil {
				return err
			}
		}
		if *yamlOut {
			data, err := yaml.Marshal(l)
			if err != nil {
				return fmt.Errorf("could not marshal the listing as yaml: %v", err)
			}
			if err := output(filename, ".yml", data); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		files := []string{param}
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err = filepath.Glob(filepath.Join(param, "*.txt"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for scripts: %v\n", param, err)
				retval = 1
				continue
			}
		}
		for _, file := range files {
			if err := process(file); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// readInput returns the bundle in filename: a packed bundle is read as is,
// anything else is compiled as a script and packed with the waves it names.
func readInput(filename, waveDir string) (*mng.Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read file %v: %v", filename, err)
	}
	dir, base := filepath.Split(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if filepath.Ext(base) == mng.BundleExtension {
		b, err := mng.ReadBundle(data)
		if err != nil {
			return nil, err
		}
		b.Name = name
		return b, nil
	}
	if waveDir == "" {
		waveDir = dir
	}
	src := string(data)
	b, err := music.Pack(name, src, func(wave string) (mng.Wave, error) {
		return readWave(waveDir, wave)
	})
	var syntaxErr *script.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := script.Position(src, syntaxErr.Offset)
		return nil, fmt.Errorf("%v:%d:%d: %v", filename, line, col, err)
	}
	return b, err
}

func readWave(dir, name string) (mng.Wave, error) {
	f := filepath.Join(dir, name)
	if filepath.Ext(name) == "" {
		f += ".wav"
	}
	data, err := os.ReadFile(f)
	if err != nil {
		return mng.Wave{}, err
	}
	return mng.ReadWav(data)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "MNG packer. Input music scripts, outputs .mng bundles holding the script and its waves.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
