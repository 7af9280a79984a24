package controller

type DisplayState int

const (
	DisplayIdle DisplayState = iota
	DisplayLoading
	DisplayDisplayed
)

func (s DisplayState) String() string {
	switch s {
	case DisplayIdle:
		return "idle"
	case DisplayLoading:
		return "loading"
	case DisplayDisplayed:
		return "displayed"
	}
	return "unknown"
}

type SubmitState int

const (
	SubmitReady SubmitState = iota
	SubmitSubmitting
	SubmitSuccess
	SubmitSoldOut
	SubmitError
)

func (s SubmitState) String() string {
	switch s {
	case SubmitReady:
		return "ready"
	case SubmitSubmitting:
		return "submitting"
	case SubmitSuccess:
		return "success"
	case SubmitSoldOut:
		return "sold_out"
	case SubmitError:
		return "error"
	}
	return "unknown"
}
