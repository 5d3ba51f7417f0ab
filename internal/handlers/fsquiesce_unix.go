/*
 * MIT License
 *
 * Copyright (c) 2026 The vagent Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

//go:build linux

package handlers

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// platformFreeze/platformThaw use the Linux FIFREEZE/FIFTHAW ioctls, the
// same primitive fsfreeze(8) uses, against every mountpoint named (or every
// mountpoint in /proc/mounts when the list is empty, spec.md §4.F "empty =
// all quiescable").
func platformFreeze(mountpoints []string) ([]string, error) {
	return quiesceAll(mountpoints, unix.FIFREEZE)
}

func platformThaw(mountpoints []string) ([]string, error) {
	return quiesceAll(mountpoints, unix.FITHAW)
}

func quiesceAll(mountpoints []string, ioctl uintptr) ([]string, error) {
	targets := mountpoints
	if len(targets) == 0 {
		var err error
		targets, err = allMountpoints()
		if err != nil {
			return nil, err
		}
	}

	var affected []string
	var unsupportedAll = true
	for _, mp := range targets {
		if err := quiesceOne(mp, ioctl); err != nil {
			if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOTTY) {
				continue
			}
			return affected, err
		}
		unsupportedAll = false
		affected = append(affected, mp)
	}

	if unsupportedAll {
		return nil, errQuiesceUnsupported
	}
	return affected, nil
}

func quiesceOne(mountpoint string, ioctl uintptr) error {
	f, err := os.Open(mountpoint)
	if err != nil {
		return err
	}
	defer f.Close()

	return unix.IoctlSetInt(int(f.Fd()), uint(ioctl), 0)
}

func allMountpoints() ([]string, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mounts []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		mounts = append(mounts, fields[1])
	}
	return mounts, sc.Err()
}
