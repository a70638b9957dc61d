package appointmentRepo

import (
	"context"

	"medivoice/database"
	"medivoice/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentRepository interface {
	Create(ctx context.Context, record models.AppointmentRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.AppointmentRecord, error)
	GetByEmail(ctx context.Context, email string) ([]models.AppointmentRecord, error)
	MarkReminded(ctx context.Context, id string) error
	DeleteByID(ctx context.Context, id string) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns a new AppointmentRepository instance using MongoDB.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("medivoice")
	return &mongoAppointmentRepo{
		coll: db.Collection("appointment_records"),
	}
}
