package deptadmin

// Build version & commit SHA.
var (
	Version string
	Commit  string
)

// Item is anything with its own set of pages, addressed as /type/id/action.
type Item interface {
	ItemID() uint64
	ItemType() string
}

// NoticeLevel is the severity of a Notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message for the user, the "toast" shown after a
// remote call settles.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
