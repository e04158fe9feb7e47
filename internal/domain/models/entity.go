package models

import "time"

// GetID returns the blog ID.
func (b *Blog) GetID() string { return b.ID }

// SetID sets the blog ID.
func (b *Blog) SetID(id string) { b.ID = id }

// GetOwnerID returns the blog owner.
func (b *Blog) GetOwnerID() string { return b.OwnerID }

// SetOwnerID sets the blog owner.
func (b *Blog) SetOwnerID(id string) { b.OwnerID = id }

// Stamp sets the creation and update times.
func (b *Blog) Stamp(created, updated time.Time) { b.CreatedAt, b.UpdatedAt = created, updated }

// GetCreatedAt returns the creation time.
func (b *Blog) GetCreatedAt() time.Time { return b.CreatedAt }

// GetID returns the location ID.
func (l *Location) GetID() string { return l.ID }

// SetID sets the location ID.
func (l *Location) SetID(id string) { l.ID = id }

// GetOwnerID returns the location owner.
func (l *Location) GetOwnerID() string { return l.OwnerID }

// SetOwnerID sets the location owner.
func (l *Location) SetOwnerID(id string) { l.OwnerID = id }

// Stamp sets the creation and update times.
func (l *Location) Stamp(created, updated time.Time) { l.CreatedAt, l.UpdatedAt = created, updated }

// GetCreatedAt returns the creation time.
func (l *Location) GetCreatedAt() time.Time { return l.CreatedAt }

// GetID returns the review ID.
func (r *Review) GetID() string { return r.ID }

// SetID sets the review ID.
func (r *Review) SetID(id string) { r.ID = id }

// GetOwnerID returns the review author.
func (r *Review) GetOwnerID() string { return r.OwnerID }

// SetOwnerID sets the review author.
func (r *Review) SetOwnerID(id string) { r.OwnerID = id }

// Stamp sets the creation and update times.
func (r *Review) Stamp(created, updated time.Time) { r.CreatedAt, r.UpdatedAt = created, updated }

// GetCreatedAt returns the creation time.
func (r *Review) GetCreatedAt() time.Time { return r.CreatedAt }
