package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/buildbarn/bb-event-sink/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"google.golang.org/grpc/codes"
)

var (
	serverPrometheusMetrics sync.Once

	serverConnectionsAcceptedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "ingestion",
			Name:      "server_connections_accepted_total",
			Help:      "Number of connections accepted by the ingestion server.",
		})
	serverRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "ingestion",
			Name:      "server_records_total",
			Help:      "Number of records received by the ingestion server, and whether they were accepted.",
		},
		[]string{"result"})

	serverRecordsAccepted        = serverRecordsTotal.WithLabelValues("Accepted")
	serverRecordsMalformed       = serverRecordsTotal.WithLabelValues("Malformed")
	serverRecordsInvalid         = serverRecordsTotal.WithLabelValues("Invalid")
	serverRecordsPushFailed      = serverRecordsTotal.WithLabelValues("PushFailed")
	serverRecordsPayloadRejected = serverRecordsTotal.WithLabelValues("PayloadRejected")
)

// Pusher of payloads into a buffer, keyed by a routing key.
// eventbuffer.Store implements this interface.
type Pusher interface {
	Push(key string, data []byte) error
}

// Server accepts connections on which clients send a stream of JSON
// encoded records. Every record is converted to a routing key and a
// payload, which are pushed into a buffer.
type Server struct {
	pusher      Pusher
	errorLogger util.ErrorLogger
}

// NewServer creates a Server that pushes all records it receives into
// the provided Pusher.
func NewServer(pusher Pusher, errorLogger util.ErrorLogger) *Server {
	serverPrometheusMetrics.Do(func() {
		prometheus.MustRegister(serverConnectionsAcceptedTotal)
		prometheus.MustRegister(serverRecordsTotal)
	})

	return &Server{
		pusher:      pusher,
		errorLogger: errorLogger,
	}
}

// Serve accepts connections on a listener and handles each of them in
// a separate goroutine. When the context is cancelled, the listener
// and all open connections are closed, and Serve returns once all
// connections have been handled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-groupCtx.Done()
		listener.Close()
		return nil
	})
	group.Go(func() error {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if groupCtx.Err() != nil {
					return nil
				}
				return util.StatusWrapWithCode(err, codes.Unavailable, "Failed to accept connection")
			}
			serverConnectionsAcceptedTotal.Inc()
			group.Go(func() error {
				connCtx, cancel := context.WithCancel(groupCtx)
				defer cancel()
				go func() {
					<-connCtx.Done()
					conn.Close()
				}()
				s.HandleConnection(connCtx, conn)
				return nil
			})
		}
	})
	return group.Wait()
}

// HandleConnection reads records from a single connection until it is
// closed by the client. Records that cannot be decoded are logged and
// skipped. When the input contains malformed JSON, the remainder of the
// current line is discarded before decoding resumes. A malformed value
// that spans multiple lines is therefore reported once for every line
// on which decoding fails.
func (s *Server) HandleConnection(ctx context.Context, conn io.Reader) {
	r := bufio.NewReader(conn)
	var unread []byte
	for {
		pending := bytes.NewReader(unread)
		decoder := json.NewDecoder(io.MultiReader(pending, r))
		for {
			var record Record
			err := decoder.Decode(&record)
			if err == nil {
				s.handleRecord(&record)
				continue
			}
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				return
			}

			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				// The offending value has been consumed
				// in its entirety.
				serverRecordsMalformed.Inc()
				s.errorLogger.Log(util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to decode record"))
				continue
			}
			if !errors.As(err, &syntaxErr) {
				if ctx.Err() == nil {
					s.errorLogger.Log(util.StatusWrapWithCode(err, codes.Unavailable, "Failed to read from connection"))
				}
				return
			}

			serverRecordsMalformed.Inc()
			s.errorLogger.Log(util.StatusWrapWithCode(err, codes.InvalidArgument, "Failed to decode record"))

			// Data that the decoder read ahead is carried
			// over into the next decoder, so that the
			// connection is never wrapped more than once.
			var ok bool
			unread, ok = skipMalformedLine(decoder, pending, r)
			if !ok {
				return
			}
			break
		}
	}
}

func (s *Server) handleRecord(record *Record) {
	if err := record.Validate(); err != nil {
		serverRecordsInvalid.Inc()
		s.errorLogger.Log(err)
		return
	}
	payload, err := Payload(record.Content)
	if err != nil {
		serverRecordsPayloadRejected.Inc()
		s.errorLogger.Log(err)
		return
	}
	if err := s.pusher.Push(RoutingKey(record.Label), payload); err != nil {
		serverRecordsPushFailed.Inc()
		s.errorLogger.Log(util.StatusWrap(err, "Failed to buffer record"))
		return
	}
	serverRecordsAccepted.Inc()
}

// skipMalformedLine discards the line on which decoding failed. The
// decoder's buffer starts at the value that could not be decoded,
// possibly preceded by whitespace. Input following the line that was
// already read from the connection is returned.
func skipMalformedLine(decoder *json.Decoder, pending *bytes.Reader, r *bufio.Reader) ([]byte, bool) {
	unread, _ := io.ReadAll(io.MultiReader(decoder.Buffered(), pending))
	start := 0
	for start < len(unread) && isSpace(unread[start]) {
		start++
	}
	if start == len(unread) {
		return nil, skipLine(r)
	}
	if i := bytes.IndexByte(unread[start+1:], '\n'); i >= 0 {
		return unread[start+i+2:], true
	}
	return nil, skipRestOfLine(r)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// skipLine discards leading whitespace, followed by input up to and
// including the next newline. It returns false if the input ends
// before that.
func skipLine(r *bufio.Reader) bool {
	for {
		c, err := r.ReadByte()
		if err != nil {
			return false
		}
		if !isSpace(c) {
			return skipRestOfLine(r)
		}
	}
}

func skipRestOfLine(r *bufio.Reader) bool {
	for {
		_, err := r.ReadSlice('\n')
		if err == nil {
			return true
		}
		if err != bufio.ErrBufferFull {
			return false
		}
	}
}
