package subcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/zzzzlzzzz/alena/client"
)

func ShowResult(ctx context.Context, w io.Writer, c *client.Client, id uint32) error {
	output, ok, err := c.Result(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(w, "Result for task with task_id %d NOT FOUND\n", id)
		return nil
	}
	fmt.Fprintf(w, "Result for task with task_id %d is %s\n", id, output)
	return nil
}
