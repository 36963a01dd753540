package protocol

// MaxTextLength bounds the encoded size of every text field.
const MaxTextLength = 256

// Message is one decoded frame. Only the fields used by Command are
// meaningful, the rest stay at their zero value.
type Message struct {
	Command Command
	Text    string
	TaskID  uint32
	Status  Status
}

func NewSubmit(cmd Command, text string) Message {
	return Message{Command: cmd, Text: text}
}

func NewSubmitAck(taskID uint32) Message {
	return Message{Command: SUBMIT_ACK, TaskID: taskID}
}

func NewQueryStatus(taskID uint32) Message {
	return Message{Command: QUERY_STATUS, TaskID: taskID}
}

func NewStatusReply(status Status) Message {
	return Message{Command: STATUS_REPLY, Status: status}
}

func NewQueryResult(taskID uint32) Message {
	return Message{Command: QUERY_RESULT, TaskID: taskID}
}

func NewResultReply(status Status, text string) Message {
	return Message{Command: RESULT_REPLY, Status: status, Text: text}
}
