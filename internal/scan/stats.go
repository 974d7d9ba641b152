package scan

import "github.com/sirupsen/logrus"

// Stats 汇总一次扫描的结果，所有失败都只计数、不中断扫描。
type Stats struct {
	Scanned      int
	ReadErrors   int
	DecodeErrors int
	Rejected     map[string]int
	Corrupt      int
	Unnamed      int
	Synthesized  int
	Accepted     int
	Selected     int
	Written      int
	BytesWritten int64
}

func newStats() Stats {
	return Stats{Rejected: make(map[string]int)}
}

// Fields 将统计转为日志字段。
func (s Stats) Fields() logrus.Fields {
	fields := logrus.Fields{
		"scanned":       s.Scanned,
		"read_errors":   s.ReadErrors,
		"decode_errors": s.DecodeErrors,
		"corrupt":       s.Corrupt,
		"unnamed":       s.Unnamed,
		"synthesized":   s.Synthesized,
		"accepted":      s.Accepted,
		"selected":      s.Selected,
		"written":       s.Written,
		"bytes_written": s.BytesWritten,
	}
	for reason, n := range s.Rejected {
		fields["rejected_"+reason] = n
	}
	return fields
}
