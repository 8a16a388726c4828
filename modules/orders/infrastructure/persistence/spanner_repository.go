package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	platformspanner "github.com/agrilink/marketplace/internal/platform/spanner"
	"github.com/agrilink/marketplace/modules/orders/domain"
	"github.com/agrilink/marketplace/modules/shared/types"
)

// Schema is the DDL the ledger expects.
var Schema = []string{
	`CREATE TABLE Orders (
		OrderID           STRING(16) NOT NULL,
		UserID            STRING(36) NOT NULL,
		Status            STRING(16) NOT NULL,
		Fulfillment       STRING(16) NOT NULL,
		FullName          STRING(100) NOT NULL,
		Email             STRING(320) NOT NULL,
		Phone             STRING(32) NOT NULL,
		DeliveryAddress   STRING(300),
		Notes             STRING(500),
		SubtotalAmount    INT64 NOT NULL,
		DeliveryFeeAmount INT64 NOT NULL,
		TotalAmount       INT64 NOT NULL,
		Currency          STRING(3) NOT NULL,
		CreatedAt         TIMESTAMP NOT NULL,
		UpdatedAt         TIMESTAMP NOT NULL,
	) PRIMARY KEY (OrderID)`,
	`CREATE INDEX OrdersByUserID ON Orders(UserID, CreatedAt DESC)`,
	`CREATE TABLE OrderItems (
		OrderID     STRING(16) NOT NULL,
		ItemIndex   INT64 NOT NULL,
		ProductID   STRING(36) NOT NULL,
		ProductName STRING(MAX) NOT NULL,
		SellerID    STRING(36) NOT NULL,
		SellerName  STRING(MAX),
		Unit        STRING(32),
		Quantity    INT64 NOT NULL,
		UnitAmount  INT64 NOT NULL,
		Currency    STRING(3) NOT NULL,
	) PRIMARY KEY (OrderID, ItemIndex),
	  INTERLEAVE IN PARENT Orders ON DELETE CASCADE`,
}

var (
	orderColumns = []string{
		"OrderID", "UserID", "Status", "Fulfillment", "FullName", "Email", "Phone",
		"DeliveryAddress", "Notes", "SubtotalAmount", "DeliveryFeeAmount", "TotalAmount",
		"Currency", "CreatedAt", "UpdatedAt",
	}
	itemColumns = []string{
		"ProductID", "ProductName", "SellerID", "SellerName", "Unit", "Quantity", "UnitAmount", "Currency",
	}
)

type SpannerRepository struct {
	client *spanner.Client
}

func NewSpannerRepository(client *spanner.Client) *SpannerRepository {
	return &SpannerRepository{client: client}
}

// Compile-time interface check.
var _ domain.OrderRepository = (*SpannerRepository)(nil)

// Save persists an order.
// It uses an existing transaction if available, otherwise creates a new one.
func (r *SpannerRepository) Save(ctx context.Context, order *domain.Order) error {
	if txn, ok := platformspanner.ReadWriteTxFromContext(ctx); ok {
		return r.saveWithTx(txn, order)
	}

	_, err := r.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		return r.saveWithTx(txn, order)
	})
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *SpannerRepository) saveWithTx(tx *spanner.ReadWriteTransaction, order *domain.Order) error {
	s := order.Snapshot()
	orderID := s.ID.String()

	// Items are rewritten as a whole
	mutations := []*spanner.Mutation{
		spanner.Delete("OrderItems", spanner.KeyRange{
			Start: spanner.Key{orderID},
			End:   spanner.Key{orderID},
			Kind:  spanner.ClosedClosed,
		}),
		spanner.InsertOrUpdate("Orders", orderColumns, []interface{}{
			orderID,
			s.UserID.String(),
			s.Status.String(),
			s.Contact.Fulfillment.String(),
			s.Contact.FullName,
			s.Contact.Email,
			s.Contact.Phone,
			nullable(s.Contact.DeliveryAddress),
			nullable(s.Contact.Notes),
			s.Subtotal.Amount(),
			s.DeliveryFee.Amount(),
			s.Total.Amount(),
			s.Total.Currency(),
			s.CreatedAt,
			s.UpdatedAt,
		}),
	}

	for i, item := range s.Items {
		mutations = append(mutations, spanner.InsertOrUpdate("OrderItems",
			append([]string{"OrderID", "ItemIndex"}, itemColumns...),
			[]interface{}{
				orderID,
				int64(i),
				item.ProductID,
				item.ProductName,
				item.SellerID,
				nullable(item.SellerName),
				nullable(item.Unit),
				int64(item.Quantity),
				item.UnitPrice.Amount(),
				item.UnitPrice.Currency(),
			},
		))
	}

	return tx.BufferWrite(mutations)
}

func (r *SpannerRepository) FindByID(ctx context.Context, id types.OrderID) (*domain.Order, error) {
	reader, ok := platformspanner.ReadTransactionFromContext(ctx)
	if !ok {
		// Reads from Orders + OrderItems require ReadOnlyTransaction
		// for point-in-time consistency. Single() is only for one read.
		roTx := r.client.ReadOnlyTransaction()
		defer roTx.Close()
		reader = roTx
	}

	row, err := reader.ReadRow(ctx, "Orders", spanner.Key{id.String()}, orderColumns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to read order: %w", err)
	}

	snapshot, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if snapshot.Items, err = r.readOrderItems(ctx, reader, id.String()); err != nil {
		return nil, err
	}
	return domain.Reconstitute(snapshot), nil
}

func (r *SpannerRepository) FindByUserID(ctx context.Context, userID types.UserID, offset, limit int) ([]*domain.Order, int, error) {
	reader, ok := platformspanner.ReadTransactionFromContext(ctx)
	if !ok {
		// Multiple queries (COUNT + SELECT + items) require ReadOnlyTransaction
		// for point-in-time consistency. Single() is only for one read.
		roTx := r.client.ReadOnlyTransaction()
		defer roTx.Close()
		reader = roTx
	}

	// Get total count
	countStmt := spanner.Statement{
		SQL:    `SELECT COUNT(*) FROM Orders WHERE UserID = @userID`,
		Params: map[string]interface{}{"userID": userID.String()},
	}

	countIter := reader.Query(ctx, countStmt)
	defer countIter.Stop()

	var total int64
	countRow, err := countIter.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if countRow != nil {
		if err := countRow.Columns(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan count: %w", err)
		}
	}

	// Query orders with pagination
	stmt := spanner.Statement{
		SQL: `SELECT OrderID, UserID, Status, Fulfillment, FullName, Email, Phone,
		             DeliveryAddress, Notes, SubtotalAmount, DeliveryFeeAmount, TotalAmount,
		             Currency, CreatedAt, UpdatedAt
		      FROM Orders@{FORCE_INDEX=OrdersByUserID}
		      WHERE UserID = @userID
		      ORDER BY CreatedAt DESC, OrderID
		      LIMIT @limit OFFSET @offset`,
		Params: map[string]interface{}{
			"userID": userID.String(),
			"limit":  int64(limit),
			"offset": int64(offset),
		},
	}

	iter := reader.Query(ctx, stmt)
	defer iter.Stop()

	orders := []*domain.Order{}
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query orders: %w", err)
		}

		snapshot, err := scanOrder(row)
		if err != nil {
			return nil, 0, err
		}
		if snapshot.Items, err = r.readOrderItems(ctx, reader, snapshot.ID.String()); err != nil {
			return nil, 0, err
		}
		orders = append(orders, domain.Reconstitute(snapshot))
	}

	return orders, int(total), nil
}

func scanOrder(row *spanner.Row) (domain.OrderSnapshot, error) {
	var (
		orderID, userID, status, fulfillment string
		fullName, email, phone, currency     string
		address, notes                       spanner.NullString
		subtotal, fee, total                 int64
		createdAt, updatedAt                 time.Time
	)
	if err := row.Columns(&orderID, &userID, &status, &fulfillment, &fullName, &email, &phone,
		&address, &notes, &subtotal, &fee, &total, &currency, &createdAt, &updatedAt); err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("failed to scan order: %w", err)
	}

	parsedOrderID, err := types.ParseOrderID(orderID)
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("failed to parse order id %q: %w", orderID, err)
	}
	parsedUserID, err := types.ParseUserID(userID)
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("failed to parse user id for order %s: %w", orderID, err)
	}
	subtotalMoney, err := types.NewMoney(subtotal, currency)
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("order %s currency: %w", orderID, err)
	}

	return domain.OrderSnapshot{
		ID:     parsedOrderID,
		UserID: parsedUserID,
		Contact: domain.Contact{
			FullName:        fullName,
			Email:           email,
			Phone:           phone,
			Fulfillment:     domain.Fulfillment(fulfillment),
			DeliveryAddress: address.StringVal,
			Notes:           notes.StringVal,
		},
		Subtotal:    subtotalMoney,
		DeliveryFee: types.MustNewMoney(fee, currency),
		Total:       types.MustNewMoney(total, currency),
		Status:      domain.Status(status),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (r *SpannerRepository) readOrderItems(ctx context.Context, reader platformspanner.ReadTransaction, orderID string) ([]domain.LineItem, error) {
	iter := reader.Read(ctx, "OrderItems",
		spanner.KeyRange{
			Start: spanner.Key{orderID},
			End:   spanner.Key{orderID},
			Kind:  spanner.ClosedClosed,
		},
		itemColumns,
	)
	defer iter.Stop()

	var items []domain.LineItem
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read order items: %w", err)
		}

		var productID, productName, sellerID, currency string
		var sellerName, unit spanner.NullString
		var quantity, unitAmount int64

		if err := row.Columns(&productID, &productName, &sellerID, &sellerName, &unit, &quantity, &unitAmount, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		price, err := types.NewMoney(unitAmount, currency)
		if err != nil {
			return nil, fmt.Errorf("order %s item %s price: %w", orderID, productID, err)
		}
		items = append(items, domain.LineItem{
			ProductID:   productID,
			ProductName: productName,
			SellerID:    sellerID,
			SellerName:  sellerName.StringVal,
			Unit:        unit.StringVal,
			Quantity:    int(quantity),
			UnitPrice:   price,
		})
	}

	return items, nil
}

func nullable(s string) spanner.NullString {
	return spanner.NullString{StringVal: s, Valid: s != ""}
}
