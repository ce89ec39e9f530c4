package grpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/catalog/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/grpcjson"
)

const ServiceName = "bookstore.catalog.v1.CatalogService"

type Server struct {
	svc *application.Service
}

func NewServer(svc *application.Service) *Server { return &Server{svc: svc} }

func (s *Server) CreateBook(ctx context.Context, req *Book) (*Book, error) {
	b, err := s.svc.CreateBook(ctx, domain.Book{
		Title: req.Title, Genre: req.Genre, Synopsis: req.Synopsis, ISBN: req.ISBN,
		Edition: req.Edition, SuggestedRetailCents: req.SuggestedRetailCents, TotalCopies: req.TotalCopies,
		AuthorIDs: req.AuthorIDs,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toBook(b), nil
}

func (s *Server) GetBook(ctx context.Context, req *IDRequest) (*Book, error) {
	b, err := s.svc.GetBook(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toBook(b), nil
}

func (s *Server) PublishBook(ctx context.Context, req *PublishRequest) (*Book, error) {
	b, err := s.svc.Publish(ctx, req.ID, req.PublishedCopies)
	if err != nil {
		return nil, toStatus(err)
	}
	return toBook(b), nil
}

func (s *Server) UpdateBook(ctx context.Context, req *UpdateBookRequest) (*Book, error) {
	b, err := s.svc.UpdateBook(ctx, req.ID, req.Book.changes())
	if err != nil {
		return nil, toStatus(err)
	}
	return toBook(b), nil
}

func (s *Server) ListBooks(ctx context.Context, req *ListBooksRequest) (*BookList, error) {
	books, err := s.svc.ListBooks(ctx, req.AuthorIDs)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &BookList{Books: make([]*Book, 0, len(books))}
	for _, b := range books {
		out.Books = append(out.Books, toBook(b))
	}
	return out, nil
}

func (s *Server) DeleteBook(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.svc.DeleteBook(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) CreateAuthor(ctx context.Context, req *Author) (*Author, error) {
	a, err := s.svc.CreateAuthor(ctx, req.toDomain())
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthor(a), nil
}

func (s *Server) GetAuthor(ctx context.Context, req *IDRequest) (*Author, error) {
	a, err := s.svc.GetAuthor(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthor(a), nil
}

func (s *Server) ListAuthors(ctx context.Context, _ *Empty) (*AuthorList, error) {
	authors, err := s.svc.ListAuthors(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &AuthorList{Authors: make([]*Author, 0, len(authors))}
	for _, a := range authors {
		out.Authors = append(out.Authors, toAuthor(a))
	}
	return out, nil
}

func (s *Server) UpdateAuthor(ctx context.Context, req *UpdateAuthorRequest) (*Author, error) {
	a, err := s.svc.UpdateAuthor(ctx, req.ID, req.Author.toDomain())
	if err != nil {
		return nil, toStatus(err)
	}
	return toAuthor(a), nil
}

func (s *Server) DeleteAuthor(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.svc.DeleteAuthor(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAuthorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAuthorExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidBook), errors.Is(err, domain.ErrInvalidCopies), errors.Is(err, domain.ErrInvalidAuthor):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInsufficientPrintStock), errors.Is(err, domain.ErrNotPublishable):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

type API interface {
	PublishBook(context.Context, *PublishRequest) (*Book, error)
}

func Register(gs *grpc.Server, srv *Server) {
	gs.RegisterService(&grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*API)(nil),
		Methods: []grpc.MethodDesc{
			grpcjson.Unary(ServiceName, "CreateBook", srv.CreateBook),
			grpcjson.Unary(ServiceName, "GetBook", srv.GetBook),
			grpcjson.Unary(ServiceName, "UpdateBook", srv.UpdateBook),
			grpcjson.Unary(ServiceName, "ListBooks", srv.ListBooks),
			grpcjson.Unary(ServiceName, "DeleteBook", srv.DeleteBook),
			grpcjson.Unary(ServiceName, "PublishBook", srv.PublishBook),
			grpcjson.Unary(ServiceName, "CreateAuthor", srv.CreateAuthor),
			grpcjson.Unary(ServiceName, "GetAuthor", srv.GetAuthor),
			grpcjson.Unary(ServiceName, "ListAuthors", srv.ListAuthors),
			grpcjson.Unary(ServiceName, "UpdateAuthor", srv.UpdateAuthor),
			grpcjson.Unary(ServiceName, "DeleteAuthor", srv.DeleteAuthor),
		},
		Metadata: "catalog.json",
	}, srv)
}

func Run(addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer(grpcjson.ServerOption())
	Register(gs, srv)
	go func() {
		_ = gs.Serve(lis)
	}()
	return gs, nil
}
