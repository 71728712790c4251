package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/taloscope/taloscope/pkg/collision"
	"github.com/taloscope/taloscope/pkg/graph"
	"github.com/taloscope/taloscope/pkg/session"
)

const (
	defaultDragStep = 25
	// Terminal cells are roughly twice as tall as they are wide.
	cellWidth  = 10.0
	cellHeight = 25.0
)

var (
	dragHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	dragStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	dragActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

type dragOpts struct {
	output string
	step   float64
}

// dragCommand opens an interactive canvas for dragging nodes of a layout.
func (c *CLI) dragCommand() *cobra.Command {
	opts := dragOpts{step: defaultDragStep}

	cmd := &cobra.Command{
		Use:   "drag [layout.json]",
		Short: "Drag nodes of a layout interactively",
		Long: `Open a terminal canvas over a layout and move nodes with the keyboard.

Every move is resolved against the other nodes, so a dragged node never comes
to rest on top of another (apart from overlaps a single pass cannot clear).

  tab / shift+tab   select node
  enter             pick up / drop the selected node
  arrows, hjkl      move the picked-up node (HJKL moves 5x)
  esc               cancel the current drag
  s                 save
  q                 quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDrag(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file to save to (default: overwrite the input)")
	cmd.Flags().Float64Var(&opts.step, "step", opts.step, "pixels moved per key press")

	return cmd
}

func (c *CLI) runDrag(ctx context.Context, input string, opts dragOpts) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if err := g.Validate(); err != nil {
		return err
	}
	if len(g.Nodes) == 0 {
		printInfo("Layout has no nodes")
		return nil
	}

	output := opts.output
	if output == "" {
		output = input
	}
	fp := c.cfg.Layout.Engine()
	m := newDragModel(g, collision.Resolver{Default: graph.Size{Width: fp.NodeWidth, Height: fp.NodeHeight}}, output, opts.step)

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if dm, ok := final.(dragModel); ok && dm.saved {
		printSuccess("Saved layout")
		printFile(output)
	}
	return nil
}

// dragModel is the bubbletea model behind `taloscope drag`.
type dragModel struct {
	tracker *session.Tracker
	ids     []string
	cursor  int
	step    float64
	output  string

	cols, rows int
	status     string
	saved      bool
	dirty      bool
}

func newDragModel(g *graph.Graph, r collision.Resolver, output string, step float64) dragModel {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	if step <= 0 {
		step = defaultDragStep
	}
	return dragModel{
		tracker: session.NewTracker(g, r),
		ids:     ids,
		step:    step,
		output:  output,
		cols:    100,
		rows:    30,
	}
}

func (m dragModel) Init() tea.Cmd {
	return nil
}

func (m dragModel) selected() string {
	return m.ids[m.cursor]
}

func (m dragModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		dragging := m.tracker.State() == session.Dragging
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab", "shift+tab":
			if dragging {
				m.status = "drop the node before selecting another"
				return m, nil
			}
			delta := 1
			if key == "shift+tab" {
				delta = len(m.ids) - 1
			}
			m.cursor = (m.cursor + delta) % len(m.ids)
			m.status = ""

		case "enter", " ":
			if dragging {
				g, err := m.tracker.End()
				if err != nil {
					m.status = err.Error()
					break
				}
				m.status = fmt.Sprintf("dropped %s at (%g, %g) after %d moves", g.NodeID, g.Current.X, g.Current.Y, g.Moves)
				m.dirty = m.dirty || g.Current != g.Start
				break
			}
			if _, err := m.tracker.Begin(m.selected()); err != nil {
				m.status = err.Error()
				break
			}
			m.status = "dragging " + m.selected()

		case "esc":
			if err := m.tracker.Cancel(); err == nil {
				m.status = "drag cancelled"
			}

		case "s":
			if dragging {
				m.status = "drop the node before saving"
				break
			}
			if err := graph.WriteGraphFile(m.tracker.Graph(), m.output); err != nil {
				m.status = "save failed: " + err.Error()
				break
			}
			m.saved, m.dirty = true, false
			m.status = "saved to " + m.output

		default:
			dx, dy, ok := moveFor(key, m.step)
			if !ok {
				break
			}
			if !dragging {
				m.status = "press enter to pick up " + m.selected()
				break
			}
			pos, err := m.tracker.MoveBy(dx, dy)
			if err != nil {
				m.status = err.Error()
				break
			}
			m.status = fmt.Sprintf("%s at (%g, %g)", m.selected(), pos.X, pos.Y)
		}
	}
	return m, nil
}

func moveFor(key string, step float64) (dx, dy float64, ok bool) {
	switch key {
	case "left", "h":
		return -step, 0, true
	case "right", "l":
		return step, 0, true
	case "up", "k":
		return 0, -step, true
	case "down", "j":
		return 0, step, true
	case "H":
		return -5 * step, 0, true
	case "L":
		return 5 * step, 0, true
	case "K":
		return 0, -5 * step, true
	case "J":
		return 0, 5 * step, true
	}
	return 0, 0, false
}

func (m dragModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render("taloscope drag")
	if m.dirty {
		title += StyleWarning.Render(" (unsaved)")
	}
	b.WriteString(title + "\n")

	canvasRows := max(m.rows-4, 5)
	_, dragging := m.tracker.Active()
	for _, line := range renderCanvas(m.tracker.Graph(), m.selected(), dragging, m.cols, canvasRows) {
		b.WriteString(line + "\n")
	}

	status := m.status
	if status == "" {
		status = "selected " + m.selected()
	}
	if dragging {
		b.WriteString(dragActiveStyle.Render(status) + "\n")
	} else {
		b.WriteString(dragStatusStyle.Render(status) + "\n")
	}
	b.WriteString(dragHelpStyle.Render("tab select  ⏎ pick up/drop  ←↑↓→ move  esc cancel  s save  q quit"))
	return b.String()
}

// renderCanvas draws every node as a box on a cols×rows character grid,
// scaled so the whole graph fits. The selected node uses a double border,
// or a heavy border while it is being dragged.
func renderCanvas(g *graph.Graph, selected string, dragging bool, cols, rows int) []string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	bounds := g.Bounds()
	sx := math.Max(cellWidth, bounds.Width/float64(max(cols-1, 1)))
	sy := math.Max(cellHeight, bounds.Height/float64(max(rows-1, 1)))

	toCell := func(x, y float64) (int, int) {
		return int(math.Round((x - bounds.X) / sx)), int(math.Round((y - bounds.Y) / sy))
	}

	draw := func(n graph.Node) {
		r := n.Rect(graph.DefaultFootprint)
		x0, y0 := toCell(r.Left(), r.Top())
		x1, y1 := toCell(r.Right(), r.Bottom())
		x1, y1 = max(x1-1, x0+1), max(y1-1, y0+1)

		border := []rune("┌┐└┘─│")
		if n.ID == selected {
			border = []rune("╔╗╚╝═║")
			if dragging {
				border = []rune("┏┓┗┛━┃")
			}
		}
		set := func(x, y int, ch rune) {
			if y >= 0 && y < rows && x >= 0 && x < cols {
				grid[y][x] = ch
			}
		}
		for x := x0 + 1; x < x1; x++ {
			set(x, y0, border[4])
			set(x, y1, border[4])
		}
		for y := y0 + 1; y < y1; y++ {
			set(x0, y, border[5])
			set(x1, y, border[5])
			for x := x0 + 1; x < x1; x++ {
				set(x, y, ' ')
			}
		}
		set(x0, y0, border[0])
		set(x1, y0, border[1])
		set(x0, y1, border[2])
		set(x1, y1, border[3])

		label := []rune(n.ID)
		if room := x1 - x0 - 1; len(label) > room {
			label = label[:max(room, 0)]
		}
		if y1-y0 >= 2 {
			for i, ch := range label {
				set(x0+1+i, y0+1, ch)
			}
		}
	}

	// The selected node is drawn last so it stays on top.
	for _, n := range g.Nodes {
		if n.ID != selected {
			draw(n)
		}
	}
	if n, ok := g.Node(selected); ok {
		draw(*n)
	}

	lines := make([]string, rows)
	for i, row := range grid {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}
