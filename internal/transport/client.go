package transport

import (
	"context"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls a remote TermService.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to target. Without options the connection is plaintext.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, name string, fields map[string]interface{}) (*dynamic.Message, error) {
	md, err := method(name)
	if err != nil {
		return nil, err
	}
	in := dynamic.NewMessage(md.GetInputType())
	for k, v := range fields {
		if err := in.TrySetFieldByName(k, v); err != nil {
			return nil, err
		}
	}
	out := dynamic.NewMessage(md.GetOutputType())
	if err := c.conn.Invoke(ctx, fullMethod(md), in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Check validates text remotely and returns its canonical form and arity
// (-1 when the term is not a lambda).
func (c *Client) Check(ctx context.Context, text string) (string, int, error) {
	out, err := c.invoke(ctx, MethodCheck, map[string]interface{}{"text": text})
	if err != nil {
		return "", 0, err
	}
	canonical, err := getString(out, "canonical")
	if err != nil {
		return "", 0, err
	}
	arity, err := getInt32(out, "arity")
	if err != nil {
		return "", 0, err
	}
	return canonical, int(arity), nil
}

// Call applies the function text to args and returns the serialized result.
func (c *Client) Call(ctx context.Context, text string, args []string, useStd bool) (string, error) {
	return c.call(ctx, map[string]interface{}{"text": text, "args": args, "std": useStd})
}

// CallStored applies a term from the server's store.
func (c *Client) CallStored(ctx context.Context, name string, args []string, useStd bool) (string, error) {
	return c.call(ctx, map[string]interface{}{"name": name, "args": args, "std": useStd})
}

func (c *Client) call(ctx context.Context, fields map[string]interface{}) (string, error) {
	if args, ok := fields["args"].([]string); ok && len(args) == 0 {
		delete(fields, "args")
	}
	out, err := c.invoke(ctx, MethodCall, fields)
	if err != nil {
		return "", err
	}
	return getString(out, "result")
}
