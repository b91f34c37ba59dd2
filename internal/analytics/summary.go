package analytics

import (
	"context"
	"time"

	"boxstudio/internal/shared/constants"
)

const (
	summaryShortWindow = 30 * 24 * time.Hour
	summaryLongWindow  = 90 * 24 * time.Hour
)

func (s *service) GetSummary(ctx context.Context) (*Summary, error) {
	return cached(ctx, s, "summary", constants.CACHE_KEY_ANALYTICS_SUMMARY, constants.TTL_ANALYTICS_SUMMARY, s.computeSummary)
}

func (s *service) computeSummary(ctx context.Context) (*Summary, error) {
	now := s.now()
	summary := &Summary{GeneratedAt: now}

	var err error
	if summary.AttendanceByClassType30d, err = s.repo.AttendanceByClassType(ctx, now.Add(-summaryShortWindow)); err != nil {
		return nil, err
	}
	if summary.AttendanceByClassType90d, err = s.repo.AttendanceByClassType(ctx, now.Add(-summaryLongWindow)); err != nil {
		return nil, err
	}
	if summary.ActiveMembers, err = s.repo.ActiveMembers(ctx); err != nil {
		return nil, err
	}

	profiles, err := s.repo.MemberProfiles(ctx)
	if err != nil {
		return nil, err
	}
	summary.DemographicAgeBands, summary.GenderBreakdown = breakdown(profiles, now)

	window, err := s.computeWindow(ctx, now.Add(-summaryShortWindow), now)
	if err != nil {
		return nil, err
	}
	summary.RevenueCents30d = window.RevenueCents
	summary.RefundRate30d = window.RefundRate
	summary.WhatsAppDeliveryRate30d = window.WhatsAppDeliveryRate

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}
	summary.Totals = *totals

	facts, err := s.repo.FactsSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	summary.Facts = *facts

	kpis, err := s.computeKPIs(ctx)
	if err != nil {
		return nil, err
	}
	summary.KPIs = *kpis
	summary.AverageUtilizationRate = kpis.EventCapacityUtilizationAvg

	return summary, nil
}
