package lpr

// Default job values.
const (
	DefaultJobName    = "live.pdf"
	DefaultJobSize    = 1 << 20 // claimed size; the device does not check it against the stream
	DefaultTitle      = "live-test"
	DefaultUser       = "user"
	DefaultResolution = 1200
	DefaultPageWidth  = 8
	DefaultPageHeight = 8
)

// Job describes the print job announced during the handshake and the page
// geometry used by the command encoder.
type Job struct {
	// Title is the PJL job name.
	Title string
	// Queue is the LPD queue name, empty for the default queue.
	Queue string
	// User is the submitting user.
	User string
	// Name is the logical job file name used in the cfA/dfA file names.
	Name string
	// Size is the data file size declared in the data file announcement.
	Size uint64
	// Resolution is the device resolution in dots per inch.
	Resolution uint32
	// Width is the page width in device units.
	Width uint32
	// Height is the page height in device units.
	Height uint32
	// AutoFocus enables the device autofocus.
	AutoFocus bool
}

// DefaultJob returns the job used when no job options are given.
func DefaultJob() Job {
	return Job{
		Title:      DefaultTitle,
		User:       DefaultUser,
		Name:       DefaultJobName,
		Size:       DefaultJobSize,
		Resolution: DefaultResolution,
		Width:      DefaultPageWidth,
		Height:     DefaultPageHeight,
	}
}
