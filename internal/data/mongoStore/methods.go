package mongoStore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ragModel.DocumentStore ------------------------------------------------

func (s *Store) InsertFile(ctx context.Context, file ragModel.File) (string, error) {
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(filesCollection).InsertOne(ctx, file)
	if err != nil {
		return "", fmt.Errorf("inserting file record: %w", err)
	}
	s.logger.Debug("Saved file record", "file_id", file.ID, "hash", file.FileHash)
	return file.ID, nil
}

func (s *Store) FindFileByHash(ctx context.Context, fileHash string) (*ragModel.File, error) {
	var file ragModel.File
	err := s.db.Collection(filesCollection).
		FindOne(ctx, bson.M{"file_hash": fileHash}).
		Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up file by hash: %w", err)
	}
	return &file, nil
}

func (s *Store) InsertChunks(ctx context.Context, chunks []ragModel.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	docs := make([]interface{}, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = c
		ids[i] = c.ID
	}
	_, err := s.db.Collection(chunksCollection).InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("bulk inserting chunks: %w", err)
	}
	s.logger.Debug("Inserted chunks", "count", len(ids))
	return ids, nil
}

func (s *Store) DeleteFileAndChunks(ctx context.Context, fileID string) (int64, int64, error) {
	//chunks first so a partial failure can't leave orphaned chunks behind
	chunkRes, err := s.db.Collection(chunksCollection).DeleteMany(ctx, bson.M{"file_id": fileID})
	if err != nil {
		return 0, 0, fmt.Errorf("deleting chunks for file %s: %w", fileID, err)
	}
	fileRes, err := s.db.Collection(filesCollection).DeleteOne(ctx, bson.M{"_id": fileID})
	if err != nil {
		return chunkRes.DeletedCount, 0, fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	s.logger.Info("Cleanup done",
		"file_id", fileID,
		"chunks_deleted", chunkRes.DeletedCount,
		"file_deleted", fileRes.DeletedCount)
	return chunkRes.DeletedCount, fileRes.DeletedCount, nil
}

// supportModel.SupportStore ---------------------------------------------

func (s *Store) FindCustomer(ctx context.Context, userID string) (*supportModel.Customer, error) {
	var customer supportModel.Customer
	err := s.db.Collection(customersCollection).
		FindOne(ctx, bson.M{"user_id": userID}).
		Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up customer %s: %w", userID, err)
	}
	return &customer, nil
}

func (s *Store) InsertCustomer(ctx context.Context, customer supportModel.Customer) error {
	//string ids throughout; letting the driver generate an ObjectID here
	//would break decoding later
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(customersCollection).InsertOne(ctx, customer)
	if err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	return s.db.Collection(customersCollection).CountDocuments(ctx, bson.M{})
}

func (s *Store) InsertTicket(ctx context.Context, ticket supportModel.Ticket) (string, error) {
	if ticket.ID == "" {
		ticket.ID = uuid.New().String()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(ticketsCollection).InsertOne(ctx, ticket)
	if err != nil {
		return "", fmt.Errorf("inserting ticket: %w", err)
	}
	return ticket.TicketID, nil
}

func (s *Store) FindOpenTickets(ctx context.Context, userID string) ([]supportModel.Ticket, error) {
	filter := bson.M{
		"user_id": userID,
		"status":  bson.M{"$in": []string{"open", "pending"}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(50)
	cur, err := s.db.Collection(ticketsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing open tickets for %s: %w", userID, err)
	}
	defer cur.Close(ctx)

	var tickets []supportModel.Ticket
	if err := cur.All(ctx, &tickets); err != nil {
		return nil, fmt.Errorf("decoding tickets: %w", err)
	}
	return tickets, nil
}

func (s *Store) InsertRunLog(ctx context.Context, log supportModel.RunLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Collection(runLogsCollection).InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("inserting run log: %w", err)
	}
	return nil
}
