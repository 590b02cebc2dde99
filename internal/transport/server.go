package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/library"
	"github.com/funvibe/ljson/internal/parser"
	"github.com/funvibe/ljson/internal/reify"
	"github.com/funvibe/ljson/internal/store"
	"github.com/funvibe/ljson/internal/term"
)

// Server implements TermService. Handlers are independent: each request
// parses and evaluates with its own state.
type Server struct {
	Settings *config.Settings
	// Store resolves CallRequest.name. Optional.
	Store *store.Store
	// Logger receives one line per call. Nil disables logging.
	Logger *log.Logger

	sd  *desc.ServiceDescriptor
	lib library.Lib
	gs  *grpc.Server
}

func NewServer(settings *config.Settings) (*Server, error) {
	if settings == nil {
		settings = config.Default()
	}
	sd, err := Service()
	if err != nil {
		return nil, err
	}
	return &Server{
		Settings: settings,
		sd:       sd,
		lib:      library.FromSettings(settings.Library),
	}, nil
}

// Register adds TermService to gs.
func (s *Server) Register(gs *grpc.Server) {
	sd := &grpc.ServiceDesc{
		ServiceName: s.sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Metadata:    s.sd.GetFile().GetName(),
	}
	for _, md := range s.sd.GetMethods() {
		md := md
		sd.Methods = append(sd.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := dynamic.NewMessage(md.GetInputType())
				if err := dec(in); err != nil {
					return nil, err
				}
				h := srv.(*Server)
				if interceptor == nil {
					return h.handleUnary(ctx, md, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(md)}
				return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
					return h.handleUnary(ctx, md, req.(*dynamic.Message))
				})
			},
		})
	}
	gs.RegisterService(sd, s)
}

// Serve registers the service on a new grpc.Server and serves lis until
// Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.gs = grpc.NewServer(grpc.UnaryInterceptor(s.logCalls))
	s.Register(s.gs)
	if s.Logger != nil {
		s.Logger.Printf("serving %s on %s", ServiceName, lis.Addr())
	}
	return s.gs.Serve(lis)
}

// ListenAndServe serves on the configured address.
func (s *Server) ListenAndServe() error {
	lis, err := net.Listen("tcp", s.Settings.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Stop() {
	if s.gs != nil {
		s.gs.GracefulStop()
	}
}

func (s *Server) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	if s.Logger != nil {
		s.Logger.Printf("%s %s %v", info.FullMethod, status.Code(err), time.Since(start))
	}
	return resp, err
}

func (s *Server) handleUnary(ctx context.Context, md *desc.MethodDescriptor, in *dynamic.Message) (interface{}, error) {
	out := dynamic.NewMessage(md.GetOutputType())
	var err error
	switch md.GetName() {
	case MethodCheck:
		err = s.check(in, out)
	case MethodCall:
		err = s.call(ctx, in, out)
	default:
		err = status.Errorf(codes.Unimplemented, "method %s not implemented", md.GetName())
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) parseOptions() parser.Options {
	return parser.Options{
		MaxDepth:      s.Settings.Limits.MaxDepth,
		MaxInputBytes: s.Settings.Limits.MaxInputBytes,
	}
}

func (s *Server) parse(text string) (term.Term, error) {
	t, err := parser.ParseWith(text, s.parseOptions())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return t, nil
}

func (s *Server) check(in, out *dynamic.Message) error {
	text, err := getString(in, "text")
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	t, err := s.parse(text)
	if err != nil {
		return err
	}
	arity := int32(-1)
	if lam, ok := t.(*term.Lambda); ok {
		arity = int32(len(lam.Params))
	}
	if err := out.TrySetFieldByName("canonical", t.String()); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := out.TrySetFieldByName("arity", arity); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

func (s *Server) call(ctx context.Context, in, out *dynamic.Message) error {
	text, err := getString(in, "text")
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	name, err := getString(in, "name")
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	argTexts, err := getStrings(in, "args")
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	useStd, err := getBool(in, "std")
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}

	if name != "" {
		if s.Store == nil {
			return status.Error(codes.FailedPrecondition, "server has no term store")
		}
		entry, err := s.Store.Get(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return status.Error(codes.NotFound, err.Error())
		}
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		text = entry.Text
	}

	fnTerm, err := s.parse(text)
	if err != nil {
		return err
	}
	args := make([]evaluator.Object, len(argTexts))
	for i, at := range argTexts {
		t, err := s.parse(at)
		if err != nil {
			return status.Errorf(codes.InvalidArgument, "argument %d: %v", i, status.Convert(err).Message())
		}
		args[i] = s.materialize(ctx, t)
	}

	fn := s.materialize(ctx, fnTerm)
	if useStd {
		fn = library.WithLib(s.lib, fn)
	}
	e := s.evaluator(ctx)
	result := e.Apply(fn, args)
	if errObj, ok := result.(*evaluator.Error); ok {
		return runtimeStatus(errObj)
	}
	if err := out.TrySetFieldByName("result", reify.Stringify(result)); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

func (s *Server) evaluator(ctx context.Context) *evaluator.Evaluator {
	e := evaluator.New()
	e.Context = ctx
	e.MaxDepth = s.Settings.Limits.MaxEvalDepth
	return e
}

func (s *Server) materialize(ctx context.Context, t term.Term) evaluator.Object {
	return s.evaluator(ctx).Materialize(t)
}

func runtimeStatus(errObj *evaluator.Error) error {
	code := codes.FailedPrecondition
	if errObj.Code == diagnostics.ErrR006 {
		code = codes.Canceled
	}
	return status.Error(code, fmt.Sprintf("[%s] %s", errObj.Code, errObj.Message))
}
