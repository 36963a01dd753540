package subcmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zzzzlzzzz/alena/client"
	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/protocol"
)

var progress = map[protocol.Status]string{
	protocol.QUEUED:      "Task with task_id %d now in queue\n",
	protocol.IN_PROGRESS: "Task with task_id %d now in progress\n",
	protocol.COMPLETED:   "Task with task_id %d completed\n",
	protocol.NOT_FOUND:   "Task with task_id %d not found\n",
}

// PostTask submits msg. With wait it reports every status seen until the
// task completes, then prints the result.
func PostTask(ctx context.Context, w io.Writer, c *client.Client, t driver.TaskType, msg string, wait bool) error {
	id, err := c.Submit(ctx, t, msg)
	if err != nil {
		return err
	}
	if !wait {
		fmt.Fprintf(w, "New task has task_id %d\n", id)
		return nil
	}

	fmt.Fprintf(w, "Monitoring task with task_id %d\n", id)
	var last protocol.Status
	output, err := c.Wait(ctx, id, func(status protocol.Status) {
		last = status
		fmt.Fprintf(w, progress[status], id)
	})
	if errors.Is(err, client.ErrNotFound) {
		if last == protocol.COMPLETED {
			fmt.Fprintf(w, "Result for task with task_id %d not found\n", id)
		}
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Result for task with task_id %d is %s\n", id, output)
	return nil
}
