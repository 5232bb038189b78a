package device

import times "gopkg.in/djherbis/times.v1"

// statTimes fills in the host-level timestamp fields of an ImageInfo using
// gopkg.in/djherbis/times.v1, which knows how to reach birth time on the
// platforms that expose it and degrades gracefully where they don't.
func statTimes(path string, size int64) ImageInfo {
	ii := ImageInfo{SizeBytes: size}

	t, err := times.Stat(path)
	if err != nil {
		return ii
	}

	ii.ModTime = t.ModTime().UTC().Format("2006-01-02T15:04:05Z")
	if t.HasBirthTime() {
		ii.HasBirth = true
		ii.BirthTime = t.BirthTime().UTC().Format("2006-01-02T15:04:05Z")
	}
	return ii
}
