package grpc

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/application"
	"github.com/dmehra2102/Bookstore-Inventory-System/internal/inventory/domain"
	"github.com/dmehra2102/Bookstore-Inventory-System/pkg/grpcjson"
)

const ServiceName = "bookstore.inventory.v1.InventoryService"

type Server struct {
	inventory *application.InventoryService
	stores    *application.StoreService
}

func NewServer(inventory *application.InventoryService, stores *application.StoreService) *Server {
	return &Server{inventory: inventory, stores: stores}
}

func (s *Server) CreateStore(ctx context.Context, req *Store) (*Store, error) {
	st, err := s.stores.Create(ctx, fromStore(*req))
	if err != nil {
		return nil, toStatus(err)
	}
	out := toStore(st)
	return &out, nil
}

func (s *Server) GetStore(ctx context.Context, req *IDRequest) (*Store, error) {
	st, err := s.stores.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toStore(st)
	return &out, nil
}

func (s *Server) ListStores(ctx context.Context, _ *Empty) (*StoreList, error) {
	stores, err := s.stores.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &StoreList{Stores: make([]Store, 0, len(stores))}
	for _, st := range stores {
		out.Stores = append(out.Stores, toStore(st))
	}
	return out, nil
}

func (s *Server) UpdateStore(ctx context.Context, req *UpdateStoreRequest) (*Store, error) {
	st, err := s.stores.Update(ctx, req.ID, fromStore(req.Store))
	if err != nil {
		return nil, toStatus(err)
	}
	out := toStore(st)
	return &out, nil
}

func (s *Server) DeleteStore(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.stores.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) CreateInventory(ctx context.Context, req *CreateInventoryRequest) (*Inventory, error) {
	rec, err := s.inventory.Create(ctx, application.CreateInventory{
		BookID: req.BookID, StoreID: req.StoreID,
		TotalCopies: req.TotalCopies, AvailableCopies: req.AvailableCopies,
		Status: domain.Status(req.Status),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := toInventory(rec)
	return &out, nil
}

func (s *Server) GetInventory(ctx context.Context, req *IDRequest) (*Inventory, error) {
	rec, err := s.inventory.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toInventory(rec)
	return &out, nil
}

func (s *Server) ListInventory(ctx context.Context, req *ListInventoryRequest) (*InventoryList, error) {
	recs, err := s.inventory.List(ctx, application.Filter{Flag: domain.Flag(req.Flag), StoreID: req.StoreID, BookID: req.BookID})
	if err != nil {
		return nil, toStatus(err)
	}
	out := &InventoryList{Items: make([]Inventory, 0, len(recs))}
	for _, r := range recs {
		out.Items = append(out.Items, toInventory(r))
	}
	return out, nil
}

func (s *Server) RestockInventory(ctx context.Context, req *RestockRequest) (*Inventory, error) {
	rec, err := s.inventory.Restock(ctx, req.ID, application.Restock{
		StoreID: req.StoreID, TotalCopies: req.TotalCopies, AvailableCopies: req.AvailableCopies,
		Status: domain.Status(req.Status), Reason: req.Reason,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	out := toInventory(rec)
	return &out, nil
}

func (s *Server) DeleteInventory(ctx context.Context, req *IDRequest) (*Empty, error) {
	if err := s.inventory.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (s *Server) TransactionHistory(ctx context.Context, req *IDRequest) (*TransactionList, error) {
	txns, err := s.inventory.History(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := &TransactionList{Transactions: make([]Transaction, 0, len(txns))}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, toTransaction(t))
	}
	return out, nil
}

func (s *Server) GetTransaction(ctx context.Context, req *IDRequest) (*Transaction, error) {
	t, err := s.inventory.Transaction(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	out := toTransaction(t)
	return &out, nil
}

// API is the handler type checked by grpc.Server.RegisterService.
type API interface {
	GetInventory(context.Context, *IDRequest) (*Inventory, error)
}

func serviceDesc(s *Server) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*API)(nil),
		Methods: []grpc.MethodDesc{
			grpcjson.Unary(ServiceName, "CreateStore", s.CreateStore),
			grpcjson.Unary(ServiceName, "GetStore", s.GetStore),
			grpcjson.Unary(ServiceName, "ListStores", s.ListStores),
			grpcjson.Unary(ServiceName, "UpdateStore", s.UpdateStore),
			grpcjson.Unary(ServiceName, "DeleteStore", s.DeleteStore),
			grpcjson.Unary(ServiceName, "CreateInventory", s.CreateInventory),
			grpcjson.Unary(ServiceName, "GetInventory", s.GetInventory),
			grpcjson.Unary(ServiceName, "ListInventory", s.ListInventory),
			grpcjson.Unary(ServiceName, "RestockInventory", s.RestockInventory),
			grpcjson.Unary(ServiceName, "DeleteInventory", s.DeleteInventory),
			grpcjson.Unary(ServiceName, "TransactionHistory", s.TransactionHistory),
			grpcjson.Unary(ServiceName, "GetTransaction", s.GetTransaction),
		},
		Metadata: "inventory.json",
	}
}

// Register attaches the inventory service to gs.
func Register(gs *grpc.Server, srv *Server) {
	gs.RegisterService(serviceDesc(srv), srv)
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

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrOverReturn):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidStock),
		errors.Is(err, domain.ErrInvalidStore), errors.Is(err, domain.ErrUnknownAction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
