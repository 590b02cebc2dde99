// Package transport serves term checking and evaluation over gRPC. The
// service schema is compiled at run time from an embedded .proto file and
// messages are handled as dynamic messages, so no generated code is needed.
package transport

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"
)

//go:embed term.proto
var protoSource string

const (
	protoFile   = "ljson/v1/term.proto"
	ServiceName = "ljson.v1.TermService"

	MethodCheck = "Check"
	MethodCall  = "Call"
)

var (
	schemaOnce sync.Once
	schema     *desc.ServiceDescriptor
	schemaErr  error
)

// Service returns the descriptor of TermService.
func Service() (*desc.ServiceDescriptor, error) {
	schemaOnce.Do(func() {
		p := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{protoFile: protoSource}),
		}
		fds, err := p.ParseFiles(protoFile)
		if err != nil {
			schemaErr = fmt.Errorf("parsing %s: %w", protoFile, err)
			return
		}
		schema = fds[0].FindService(ServiceName)
		if schema == nil {
			schemaErr = fmt.Errorf("service %s not found in %s", ServiceName, protoFile)
		}
	})
	return schema, schemaErr
}

func method(name string) (*desc.MethodDescriptor, error) {
	sd, err := Service()
	if err != nil {
		return nil, err
	}
	md := sd.FindMethodByName(name)
	if md == nil {
		return nil, fmt.Errorf("method %s not found in %s", name, ServiceName)
	}
	return md, nil
}

func fullMethod(md *desc.MethodDescriptor) string {
	return "/" + md.GetService().GetFullyQualifiedName() + "/" + md.GetName()
}

// field looks up a field and checks its declared type.
func field(msg *dynamic.Message, name string, typ descriptorpb.FieldDescriptorProto_Type, repeated bool) (*desc.FieldDescriptor, error) {
	fd := msg.GetMessageDescriptor().FindFieldByName(name)
	if fd == nil {
		return nil, fmt.Errorf("%s has no field %s", msg.GetMessageDescriptor().GetFullyQualifiedName(), name)
	}
	if fd.GetType() != typ || fd.IsRepeated() != repeated {
		return nil, fmt.Errorf("field %s: unexpected type %s", fd.GetFullyQualifiedName(), fd.GetType())
	}
	return fd, nil
}

func getString(msg *dynamic.Message, name string) (string, error) {
	fd, err := field(msg, name, descriptorpb.FieldDescriptorProto_TYPE_STRING, false)
	if err != nil {
		return "", err
	}
	s, _ := msg.GetField(fd).(string)
	return s, nil
}

func getStrings(msg *dynamic.Message, name string) ([]string, error) {
	fd, err := field(msg, name, descriptorpb.FieldDescriptorProto_TYPE_STRING, true)
	if err != nil {
		return nil, err
	}
	items, _ := msg.GetField(fd).([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out, nil
}

func getBool(msg *dynamic.Message, name string) (bool, error) {
	fd, err := field(msg, name, descriptorpb.FieldDescriptorProto_TYPE_BOOL, false)
	if err != nil {
		return false, err
	}
	b, _ := msg.GetField(fd).(bool)
	return b, nil
}

func getInt32(msg *dynamic.Message, name string) (int32, error) {
	fd, err := field(msg, name, descriptorpb.FieldDescriptorProto_TYPE_INT32, false)
	if err != nil {
		return 0, err
	}
	n, _ := msg.GetField(fd).(int32)
	return n, nil
}
