package types

import (
	errs "errors"
)

type HomePageData struct {
	User        *User
	Config      Config
	Affirmation string
	Journal     []JournalEntry
	Goals       []Goal
	Vision      []VisionItem
	Messages    []ChatMessage
	Err         error
}

func (d HomePageData) WithError(err error) HomePageData {
	d.Err = errs.Join(d.Err, err)
	return d
}

func (d HomePageData) WithUser(u User) HomePageData {
	d.User = &u
	return d
}

func (d HomePageData) WithAffirmation(s string) HomePageData {
	d.Affirmation = s
	return d
}

func (d HomePageData) WithJournal(entries []JournalEntry) HomePageData {
	d.Journal = append(d.Journal, entries...)
	return d
}

func (d HomePageData) WithGoals(goals []Goal) HomePageData {
	d.Goals = append(d.Goals, goals...)
	return d
}

func (d HomePageData) WithVision(items []VisionItem) HomePageData {
	d.Vision = append(d.Vision, items...)
	return d
}

func (d HomePageData) WithMessages(msgs []ChatMessage) HomePageData {
	d.Messages = append(d.Messages, msgs...)
	return d
}

func (d HomePageData) BoardFull() bool {
	return len(d.Vision) >= VisionBoardCapacity
}
