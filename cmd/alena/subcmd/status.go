package subcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/zzzzlzzzz/alena/client"
	"github.com/zzzzlzzzz/alena/protocol"
)

var statuses = map[protocol.Status]string{
	protocol.QUEUED:      "Task with task_id %d in QUEUE\n",
	protocol.IN_PROGRESS: "Task with task_id %d in PROGRESS\n",
	protocol.COMPLETED:   "Task with task_id %d COMPLETED\n",
	protocol.NOT_FOUND:   "Task with task_id %d NOT FOUND\n",
}

func ShowStatus(ctx context.Context, w io.Writer, c *client.Client, id uint32) error {
	status, err := c.Status(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, statuses[status], id)
	return nil
}
