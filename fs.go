// Package gofs ties together device and filesystem/sfs into a single
// convenience surface: format or open a backing file, and get back a
// mounted filesystem ready for Create/Read/Write/Remove/Stat.
//
// This does not replace device and filesystem/sfs; it is intended to make
// the common "one file, one filesystem" path short for callers who don't
// need to manage the device and the mount separately.
//
// Example, create a new 10MB image and format it:
//
//	fsys, dev, err := gofs.Create("/tmp/disk.img", 2560, device.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//	defer fsys.Unmount()
//
//	inumber, err := fsys.Create()
//
// Example, open an existing image:
//
//	fsys, dev, err := gofs.Open("/tmp/disk.img", 2560, device.Options{})
package gofs

import (
	"fmt"

	"github.com/gofs-project/gofs/device"
	"github.com/gofs-project/gofs/filesystem/sfs"
)

// Create makes a new backing file of nblocks blocks at path, formats it,
// and mounts it. The caller is responsible for calling fsys.Unmount and
// dev.Close when done.
func Create(path string, nblocks uint32, opts device.Options) (*sfs.FileSystem, *device.Device, error) {
	dev, err := device.CreatePath(path, nblocks, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("gofs: create %s: %w", path, err)
	}
	if ok, err := sfs.Format(dev); err != nil || !ok {
		dev.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("gofs: format %s: %w", path, err)
		}
		return nil, nil, fmt.Errorf("gofs: format %s: device reports itself mounted", path)
	}
	fsys, dev2, err := mount(dev, path, opts)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return fsys, dev2, nil
}

// Open mounts an existing, already-formatted backing file of nblocks
// blocks at path. The caller is responsible for calling fsys.Unmount and
// dev.Close when done.
func Open(path string, nblocks uint32, opts device.Options) (*sfs.FileSystem, *device.Device, error) {
	dev, err := device.OpenPath(path, nblocks, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("gofs: open %s: %w", path, err)
	}
	fsys, dev2, err := mount(dev, path, opts)
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	return fsys, dev2, nil
}

func mount(dev *device.Device, path string, opts device.Options) (*sfs.FileSystem, *device.Device, error) {
	fsys := &sfs.FileSystem{}
	ok, err := fsys.Mount(dev, sfs.MountOptions{Log: opts.Log})
	if err != nil {
		return nil, nil, fmt.Errorf("gofs: mount %s: %w", path, err)
	}
	if !ok {
		return nil, nil, fmt.Errorf("gofs: mount %s: superblock invalid or device already mounted", path)
	}
	return fsys, dev, nil
}
