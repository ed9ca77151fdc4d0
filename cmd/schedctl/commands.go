package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/capacity"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/pkg/database"
)

// ════════════════════════════════════════════════════════════
// distribute
// ════════════════════════════════════════════════════════════

type distributeResult struct {
	Total  int   `json:"total"  yaml:"total"`
	Parts  int   `json:"parts"  yaml:"parts"`
	Counts []int `json:"counts" yaml:"counts"`
}

func distributeCmd(cc *cliContext) *cobra.Command {
	var total, parts int

	cmd := &cobra.Command{
		Use:   "distribute",
		Short: "将总人数均分为若干份（前 total%parts 份多 1 人）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := capacity.Distribute(total, parts)
			if err != nil {
				return err
			}
			res := distributeResult{Total: total, Parts: parts, Counts: counts}
			return cc.render(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintln(w, joinInts(counts, " "))
			})
		},
	}
	cmd.Flags().IntVar(&total, "total", 0, "总人数")
	cmd.Flags().IntVar(&parts, "parts", 0, "份数")
	cmd.MarkFlagRequired("total")
	cmd.MarkFlagRequired("parts")
	return cmd
}

// ════════════════════════════════════════════════════════════
// sections generate
// ════════════════════════════════════════════════════════════

type batchView struct {
	Name  string `json:"name"  yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

type sectionView struct {
	Name       string      `json:"name"        yaml:"name"`
	TotalCount int         `json:"total_count" yaml:"total_count"`
	Batches    []batchView `json:"batches"     yaml:"batches"`
}

func sectionsCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "班级划分",
	}

	var total, count, batches int
	generate := &cobra.Command{
		Use:   "generate",
		Short: "预览院系的两层均分：院系 → 班级 → 分组",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := capacity.GenerateSections(total, count, batches)
			if err != nil {
				return err
			}

			views := make([]sectionView, 0, len(sections))
			for _, s := range sections {
				v := sectionView{Name: s.Name, TotalCount: s.TotalCount}
				for _, b := range s.Batches {
					v.Batches = append(v.Batches, batchView{Name: b.Name, Count: b.Count})
				}
				views = append(views, v)
			}

			return cc.render(cmd.OutOrStdout(), views, func(w io.Writer) {
				for _, v := range views {
					parts := make([]string, 0, len(v.Batches))
					for _, b := range v.Batches {
						parts = append(parts, fmt.Sprintf("%s=%d", b.Name, b.Count))
					}
					fmt.Fprintf(w, "%s\t%d\t%s\n", v.Name, v.TotalCount, strings.Join(parts, " "))
				}
			})
		},
	}
	generate.Flags().IntVar(&total, "total", 0, "院系总人数")
	generate.Flags().IntVar(&count, "sections", 1, "班级数")
	generate.Flags().IntVar(&batches, "batches", 2, "每班分组数")
	generate.MarkFlagRequired("total")

	cmd.AddCommand(generate)
	return cmd
}

// ════════════════════════════════════════════════════════════
// availability index / coords / summarize
// ════════════════════════════════════════════════════════════

type slotView struct {
	Index   int    `json:"index"    yaml:"index"`
	Day     int    `json:"day"      yaml:"day"`
	DayName string `json:"day_name" yaml:"day_name"`
	Hour    int    `json:"hour"     yaml:"hour"`
}

type summaryView struct {
	Summary    string `json:"summary"              yaml:"summary"`
	Duplicates []int  `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
}

func availabilityCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "教室可用性时段换算（周一至周六，8 点至 20 点）",
	}

	var day, hour int
	index := &cobra.Command{
		Use:   "index",
		Short: "(day, hour) → 扁平下标",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := availability.IndexOf(day, hour)
			if err != nil {
				return err
			}
			v := slotView{Index: idx, Day: day, DayName: availability.DayNames[day], Hour: hour}
			return cc.render(cmd.OutOrStdout(), v, func(w io.Writer) {
				fmt.Fprintln(w, idx)
			})
		},
	}
	index.Flags().IntVar(&day, "day", 0, "星期（0=周一 … 5=周六）")
	index.Flags().IntVar(&hour, "hour", 8, "钟点（8-19）")

	var idx int
	coords := &cobra.Command{
		Use:   "coords",
		Short: "扁平下标 → (day, hour)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, h, err := availability.CoordinatesOf(idx)
			if err != nil {
				return err
			}
			v := slotView{Index: idx, Day: d, DayName: availability.DayNames[d], Hour: h}
			return cc.render(cmd.OutOrStdout(), v, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", v.DayName, availability.FormatHour(h))
			})
		},
	}
	coords.Flags().IntVar(&idx, "index", 0, "扁平下标（0-71）")
	coords.MarkFlagRequired("index")

	var indices []int
	summarize := &cobra.Command{
		Use:   "summarize",
		Short: "由可用下标集合生成可读摘要",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, dupes, err := availability.SummarizeIndices(indices)
			if err != nil {
				return err
			}
			if len(dupes) > 0 {
				cc.logger.Warn("可用下标存在重复，已去重", zap.Ints("duplicates", dupes))
			}
			v := summaryView{Summary: summary, Duplicates: dupes}
			return cc.render(cmd.OutOrStdout(), v, func(w io.Writer) {
				fmt.Fprintln(w, summary)
			})
		},
	}
	summarize.Flags().IntSliceVar(&indices, "indices", nil, "可用下标，逗号分隔，例如 0,1,2,25")

	cmd.AddCommand(index, coords, summarize)
	return cmd
}

// ════════════════════════════════════════════════════════════
// migrate
// ════════════════════════════════════════════════════════════

func migrateCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "对配置中的 PostgreSQL 执行全部未应用的迁移",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cc.configPath)
			if err != nil {
				return err
			}

			db, err := database.NewDB(&cfg.Database, cfg.Log.Level, cc.logger)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := sqlDB.PingContext(ctx); err != nil {
				return fmt.Errorf("数据库不可用: %w", err)
			}

			if err := database.RunMigrations(sqlDB, cc.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
