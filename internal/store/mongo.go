package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"WorkshopNotifier/internal/domain"
)

const databaseName = "workshop_notifier"

type mongoStore struct {
	schedules     *mongo.Collection
	events        *mongo.Collection
	registrations *mongo.Collection
	bindings      *mongo.Collection
}

func newMongoStore(db *mongo.Database) *mongoStore {
	return &mongoStore{
		schedules:     db.Collection("schedules"),
		events:        db.Collection("events"),
		registrations: db.Collection("registrations"),
		bindings:      db.Collection("chat_bindings"),
	}
}

func (s *mongoStore) Backend() string { return "mongodb" }

func (s *mongoStore) CreateSchedule(ctx context.Context, sc *domain.Schedule) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	_, err := s.schedules.InsertOne(ctx, sc)
	return err
}

func (s *mongoStore) Schedule(ctx context.Context, id string) (*domain.Schedule, error) {
	var sc domain.Schedule
	err := s.schedules.FindOne(ctx, bson.M{"_id": id}).Decode(&sc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *mongoStore) Schedules(ctx context.Context, eventID string) ([]*domain.Schedule, error) {
	filter := bson.M{}
	if eventID != "" {
		filter["event_id"] = eventID
	}
	return decodeSchedules(ctx, s.schedules, filter)
}

func (s *mongoStore) PendingSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	return decodeSchedules(ctx, s.schedules, bson.M{"enabled": true, "fired": false})
}

func decodeSchedules(ctx context.Context, c *mongo.Collection, filter bson.M) ([]*domain.Schedule, error) {
	cursor, err := c.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	var out []*domain.Schedule
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mongoStore) UpdateSchedule(ctx context.Context, id string, upd domain.ScheduleUpdate) error {
	set := bson.M{}
	if upd.EventTitle != nil {
		set["event_title"] = *upd.EventTitle
	}
	if upd.EventDate != nil {
		set["event_date"] = *upd.EventDate
	}
	if upd.DaysBefore != nil {
		set["days_before"] = *upd.DaysBefore
	}
	if upd.DaysAfter != nil {
		set["days_after"] = *upd.DaysAfter
	}
	if upd.Hour != nil {
		set["hour"] = *upd.Hour
	}
	if upd.Minute != nil {
		set["minute"] = *upd.Minute
	}
	if upd.Enabled != nil {
		set["enabled"] = *upd.Enabled
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.schedules.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.schedules.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) MarkFired(ctx context.Context, id string, at time.Time) (bool, error) {
	// Conditional update: only an unfired schedule can be consumed.
	res, err := s.schedules.UpdateOne(ctx,
		bson.M{"_id": id, "fired": false},
		bson.M{"$set": bson.M{"fired": true, "fired_at": at}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *mongoStore) CreateEvent(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.events.InsertOne(ctx, e)
	return err
}

func (s *mongoStore) Event(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	err := s.events.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *mongoStore) Events(ctx context.Context) ([]*domain.Event, error) {
	cursor, err := s.events.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var out []*domain.Event
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mongoStore) UpdateEvent(ctx context.Context, id string, upd domain.EventUpdate) error {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Time != nil {
		set["time"] = *upd.Time
	}
	if upd.EndTime != nil {
		set["end_time"] = *upd.EndTime
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.MaxParticipants != nil {
		set["max_participants"] = *upd.MaxParticipants
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.InstructorName != nil {
		set["instructor_name"] = *upd.InstructorName
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	inc := bson.M{}
	if upd.RegistrationsDelta != 0 {
		inc["registrations"] = upd.RegistrationsDelta
	}
	if upd.NotificationsDelta != 0 {
		inc["notifications"] = upd.NotificationsDelta
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	if len(update) == 0 {
		return nil
	}
	res, err := s.events.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) CreateRegistration(ctx context.Context, r *domain.Registration) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.registrations.InsertOne(ctx, r)
	return err
}

func (s *mongoStore) Registrations(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	filter := bson.M{}
	if eventID != "" {
		filter["event_id"] = eventID
	}
	cursor, err := s.registrations.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var out []*domain.Registration
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *mongoStore) CreateChatBinding(ctx context.Context, b *domain.ChatBinding) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.bindings.InsertOne(ctx, b)
	return err
}

func (s *mongoStore) ChatBindings(ctx context.Context) ([]*domain.ChatBinding, error) {
	cursor, err := s.bindings.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []*domain.ChatBinding
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
