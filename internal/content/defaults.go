// Copyright (c) 2025-2026 Haidar Al-Janabi
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"github.com/aljanabi/partycms/internal/model"
)

// defaultPage is a compiled-in page template served when the record store has
// no row for a well-known page ID. Known pages never 404: a fresh deployment
// renders the template until an editor saves real content.
type defaultPage struct {
	Title    string
	Sections []defaultSection
}

type defaultSection struct {
	Title   string
	Content string
	Order   int64
}

var defaultPages = map[string]defaultPage{
	model.PageHome: {
		Title: "Home",
		Sections: []defaultSection{
			{Title: "welcome", Content: "Welcome to the party's official site.", Order: 1},
			{Title: "mission", Content: "Our mission statement will appear here.", Order: 2},
		},
	},
	model.PageVision: {
		Title: "Vision",
		Sections: []defaultSection{
			{Title: "pillar-1", Content: "First pillar.", Order: 1},
			{Title: "pillar-2", Content: "Second pillar.", Order: 2},
			{Title: "pillar-3", Content: "Third pillar.", Order: 3},
			{Title: "goals", Content: "Strategic goals will appear here.", Order: 4},
		},
	},
	model.PageNews: {
		Title: "News",
	},
	model.PageStatements: {
		Title: "Statements",
	},
	model.PageActivities: {
		Title: "Activities",
	},
	model.PageLeadership: {
		Title: "Leadership",
	},
	model.PageBudgets: {
		Title: "Budgets",
		Sections: []defaultSection{
			{Title: "overview", Content: "Budget disclosures will appear here.", Order: 1},
		},
	},
	model.PageMembership: {
		Title: "Membership",
		Sections: []defaultSection{
			{Title: "how-to-join", Content: "Fill in the membership form to apply.", Order: 1},
		},
	},
	model.PageContact: {
		Title: "Contact",
		Sections: []defaultSection{
			{Title: "reach-us", Content: "Contact details will appear here.", Order: 1},
		},
	},
}

// defaultPageView builds a PageView from the compiled-in template, or nil
// when the page ID has no default.
func defaultPageView(pageID string) *PageView {
	tpl, ok := defaultPages[pageID]
	if !ok {
		return nil
	}
	view := &PageView{
		Page: model.Page{
			ID:    pageID,
			Title: tpl.Title,
		},
	}
	for i, s := range tpl.Sections {
		view.Sections = append(view.Sections, SectionView{
			Section: model.Section{
				ID:          -int64(i + 1), // synthetic, never collides with store IDs
				PageID:      pageID,
				Title:       s.Title,
				Content:     s.Content,
				OrderNumber: s.Order,
			},
		})
	}
	return view
}
