// Command gofsutil is a small debugging and inspection tool for gofs disk
// images. It is not a shell: each invocation runs exactly one operation
// against one image and exits.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gofs-project/gofs/device"
	"github.com/gofs-project/gofs/filesystem/sfs"
	"github.com/gofs-project/gofs/snapshot"
	"github.com/gofs-project/gofs/util"
)

func check(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "gofsutil:", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: gofsutil -image PATH -blocks N COMMAND [args]

commands:
  format                       format a fresh image
  debug                        print superblock and inode summary
  create                       create a new inode, print its inumber
  stat -inode N                print the size of inode N
  read -inode N -offset O -length L [-dump]
                                read from inode N and write to stdout
  write -inode N -offset O     write stdin into inode N
  remove -inode N               free inode N
  export -codec lz4|xz -out PATH
                                write a compressed snapshot of the image
  import -codec lz4|xz -in PATH
                                restore the image from a compressed snapshot`)
	os.Exit(2)
}

func main() {
	imagePath := flag.String("image", "", "path to the disk image")
	blocks := flag.Uint("blocks", 0, "number of blocks in the image")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if *imagePath == "" || *blocks == 0 || len(args) < 1 {
		usage()
	}
	cmd := args[0]
	rest := args[1:]

	nblocks := uint32(*blocks)

	switch cmd {
	case "format":
		dev, err := device.CreatePath(*imagePath, nblocks, device.Options{})
		check(err)
		defer dev.Close()
		ok, err := sfs.Format(dev)
		check(err)
		if !ok {
			check(fmt.Errorf("format failed: device reports itself mounted"))
		}
	case "debug":
		dev, err := device.OpenPath(*imagePath, nblocks, device.Options{})
		check(err)
		defer dev.Close()
		check(sfs.Debug(os.Stdout, dev))
	case "create":
		fsys, dev := openMounted(*imagePath, nblocks)
		defer closeAll(fsys, dev)
		inum, err := fsys.Create()
		check(err)
		fmt.Println(inum)
	case "stat":
		fsetCmd := flag.NewFlagSet("stat", flag.ExitOnError)
		inode := fsetCmd.Int64("inode", -1, "inumber")
		fsetCmd.Parse(rest)
		fsys, dev := openMounted(*imagePath, nblocks)
		defer closeAll(fsys, dev)
		size, err := fsys.Stat(*inode)
		check(err)
		fmt.Println(size)
	case "read":
		fsetCmd := flag.NewFlagSet("read", flag.ExitOnError)
		inode := fsetCmd.Int64("inode", -1, "inumber")
		offset := fsetCmd.Int("offset", 0, "byte offset")
		length := fsetCmd.Int("length", 0, "byte length")
		dump := fsetCmd.Bool("dump", false, "hex-dump instead of raw bytes")
		fsetCmd.Parse(rest)
		fsys, dev := openMounted(*imagePath, nblocks)
		defer closeAll(fsys, dev)
		buf := make([]byte, *length)
		n, err := fsys.Read(*inode, buf, *length, *offset)
		check(err)
		if n < 0 {
			check(fmt.Errorf("read failed"))
		}
		if *dump {
			fmt.Print(util.DumpByteSlice(buf[:n], 16, true, true, false, nil))
		} else {
			os.Stdout.Write(buf[:n])
		}
	case "write":
		fsetCmd := flag.NewFlagSet("write", flag.ExitOnError)
		inode := fsetCmd.Int64("inode", -1, "inumber")
		offset := fsetCmd.Int("offset", 0, "byte offset")
		fsetCmd.Parse(rest)
		data, err := io.ReadAll(os.Stdin)
		check(err)
		fsys, dev := openMounted(*imagePath, nblocks)
		defer closeAll(fsys, dev)
		n, err := fsys.Write(*inode, data, len(data), *offset)
		check(err)
		if n < 0 {
			check(fmt.Errorf("write failed"))
		}
		fmt.Println(n)
	case "remove":
		fsetCmd := flag.NewFlagSet("remove", flag.ExitOnError)
		inode := fsetCmd.Int64("inode", -1, "inumber")
		fsetCmd.Parse(rest)
		fsys, dev := openMounted(*imagePath, nblocks)
		defer closeAll(fsys, dev)
		ok, err := fsys.Remove(*inode)
		check(err)
		if !ok {
			check(fmt.Errorf("remove failed: inode %d is not allocated", *inode))
		}
	case "export":
		fsetCmd := flag.NewFlagSet("export", flag.ExitOnError)
		codecName := fsetCmd.String("codec", "lz4", "lz4 or xz")
		out := fsetCmd.String("out", "", "output path")
		fsetCmd.Parse(rest)
		codec, err := parseCodec(*codecName)
		check(err)
		dev, err := device.OpenPath(*imagePath, nblocks, device.Options{})
		check(err)
		defer dev.Close()
		f, err := os.Create(*out)
		check(err)
		defer f.Close()
		check(snapshot.Export(f, dev, codec))
	case "import":
		fsetCmd := flag.NewFlagSet("import", flag.ExitOnError)
		codecName := fsetCmd.String("codec", "lz4", "lz4 or xz")
		in := fsetCmd.String("in", "", "input path")
		fsetCmd.Parse(rest)
		codec, err := parseCodec(*codecName)
		check(err)
		dev, err := device.OpenPath(*imagePath, nblocks, device.Options{})
		check(err)
		defer dev.Close()
		f, err := os.Open(*in)
		check(err)
		defer f.Close()
		check(snapshot.Import(f, dev, codec))
	default:
		usage()
	}
}

func openMounted(path string, nblocks uint32) (*sfs.FileSystem, *device.Device) {
	dev, err := device.OpenPath(path, nblocks, device.Options{})
	check(err)
	fsys := &sfs.FileSystem{}
	ok, err := fsys.Mount(dev, sfs.MountOptions{})
	check(err)
	if !ok {
		check(fmt.Errorf("mount failed: superblock invalid or device already mounted"))
	}
	return fsys, dev
}

func closeAll(fsys *sfs.FileSystem, dev *device.Device) {
	fsys.Unmount()
	dev.Close()
}

func parseCodec(name string) (snapshot.Codec, error) {
	switch name {
	case "lz4":
		return snapshot.CodecLZ4, nil
	case "xz":
		return snapshot.CodecXZ, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", name)
	}
}
