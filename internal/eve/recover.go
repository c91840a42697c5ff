package eve

import "time"

const faultSettle = 10 * time.Millisecond

// recoverCoprocessor restarts a faulted coprocessor: hold it in reset, clear
// the FIFO cursors and REG_CMD_DL, restore what the fault may have clobbered
// on BT81x, release the reset and give it time to come back.
func (e *Engine) recoverCoprocessor() {
	var patch uint16
	if e.opt.Generation > Gen2 {
		patch = e.Read16(REG_COPRO_PATCH_PTR)
	}

	e.Write8(REG_CPURESET, 1)
	e.Write16(REG_CMD_READ, 0)
	e.Write16(REG_CMD_WRITE, 0)
	e.Write16(REG_CMD_DL, 0)

	if e.opt.Generation > Gen2 {
		e.Write16(REG_COPRO_PATCH_PTR, patch)
		// some faults clear REG_PCLK
		e.enablePCLK()
	}

	e.Write8(REG_CPURESET, 0)
	e.clk.Sleep(faultSettle)
}

// enablePCLK starts the pixel clock. BT817/8 with a configured PCLKFreq run
// it from the PLL, everything else uses the PCLK divider.
func (e *Engine) enablePCLK() {
	d := e.opt.Display
	if e.opt.Generation >= Gen4 && d.PCLKFreq != 0 {
		e.Write16(REG_PCLK_FREQ, d.PCLKFreq)
		e.Write8(REG_PCLK, 1)
		return
	}
	e.Write8(REG_PCLK, d.PCLK)
}
