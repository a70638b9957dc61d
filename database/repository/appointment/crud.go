package appointmentRepo

import (
	"context"
	"errors"
	"time"

	"medivoice/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Create inserts a new appointment record and returns its ID.
func (r *mongoAppointmentRepo) Create(ctx context.Context, record models.AppointmentRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

// GetByID returns an appointment record by its ID.
func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.AppointmentRecord, error) {
	var record models.AppointmentRecord
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByEmail fetches all records associated with a patient email.
func (r *mongoAppointmentRepo) GetByEmail(ctx context.Context, email string) ([]models.AppointmentRecord, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"patientEmail": email})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.AppointmentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkReminded flags a record once its reminder has been delivered.
func (r *mongoAppointmentRepo) MarkReminded(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"reminded": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errors.New("record not found")
	}
	return nil
}

// DeleteByID removes an appointment record by ID.
func (r *mongoAppointmentRepo) DeleteByID(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.New("record not found")
	}
	return nil
}
